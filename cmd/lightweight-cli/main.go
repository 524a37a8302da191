package main

import "github.com/claude/lightweight/cmd/lightweight-cli/commands"

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	commands.Execute(Version)
}
