package main

import "github.com/sheetspec/sheetspec/apps/cli/cmd"

// Populated at build time via -ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
