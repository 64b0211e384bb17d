package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/veridata-inc/veridata-engine/pkg/cli"
	"github.com/veridata-inc/veridata-engine/pkg/config"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cli.Execute(cfg)
}
