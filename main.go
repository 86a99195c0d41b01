package main

import (
	"log"

	"github.com/joho/godotenv"

	"oficina/cmd"
	"oficina/internal/config"
	"oficina/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Commands report the error; --help and --version still work
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	l := logger.WithComponent("main")
	l.Debug().Msg("Starting oficina")

	cmd.Execute(cfg, err)
}
