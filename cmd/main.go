package main

import (
	"context"
	"fmt"
	"os"

	"cosmos-admin/cmd/command"
	"cosmos-admin/internal/cosmos/config"
	"cosmos-admin/internal/shared/logger"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred cleanup has run.
func run() int {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Top level Error: %v\n", err)
		return 1
	}

	appLogger := logger.NewLoggerFromConfig(cfg.Log.Level, cfg.Log.Format, cfg.Log.Backend)
	logger.SetDefault(appLogger)
	if envErr != nil {
		appLogger.Warnf("Could not load .env file: %v", envErr)
	}

	cl := command.NewCommandline(cfg, appLogger, os.Stdin)
	defer func() {
		if err := cl.Close(); err != nil {
			appLogger.Errorf("Failed to close connections: %v", err)
		}
	}()

	if err := cl.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Printf("Top level Error: %v\n", err)
		return 1
	}
	return 0
}
