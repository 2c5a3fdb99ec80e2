package config_test

import (
	"fmt"

	"github.com/wonny/quantedge/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Quote provider: %s\n", cfg.Quotes.BaseURL)
	fmt.Printf("Batch size: %d, timeout: %v\n", cfg.Quotes.BatchSize, cfg.Quotes.BatchTimeout)
}
