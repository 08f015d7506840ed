package main

import (
	"os"

	"github.com/ayusman/flashgesture/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Get().Error().Err(err).Msg("flashgesture failed")
		os.Exit(1)
	}
}
