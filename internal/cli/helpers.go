package cli

import (
	"fmt"
	"io"

	"github.com/lifequest/lifequest/internal/app/engagement"
	"github.com/lifequest/lifequest/internal/daemon"
)

// reportUnlocks runs an achievement pass and prints anything new.
func reportUnlocks(w io.Writer, d *daemon.Daemon) {
	for _, id := range d.Engine.CheckAchievements() {
		name := id
		if def, ok := engagement.Achievement(id); ok {
			name = def.Name
		}
		fmt.Fprintf(w, "Achievement unlocked: %s\n", name)
	}
}
