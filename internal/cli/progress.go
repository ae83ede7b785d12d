package cli

import (
	"fmt"
	"strings"
	"time"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Renders level and vitals progress for the terminal:
// [=============>................]  42%

const barWidth = 30 // Characters for the progress bar

func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// formatWait renders a refill countdown like the status line of the app.
func formatWait(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	remaining := int(d.Round(time.Second).Seconds())
	if remaining < 60 {
		return fmt.Sprintf("%ds", remaining)
	}
	if remaining < 3600 {
		return fmt.Sprintf("%dm%ds", remaining/60, remaining%60)
	}
	return fmt.Sprintf("%dh%dm", remaining/3600, (remaining%3600)/60)
}
