package main

import (
	"os"

	"github.com/wonny/quantedge/cmd/quantedge/commands"
)

// main is the entry point for the QuantEdge CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/quantedge [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
