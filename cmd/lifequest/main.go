// Package main is the single-binary entrypoint for LifeQuest.
package main

import "github.com/lifequest/lifequest/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
