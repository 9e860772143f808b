package main

import (
	"os"

	"github.com/wonny/freshness/cmd/freshd/commands"
)

// main is the entry point for the freshness CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/freshd [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
