package main

import (
	"os"

	"github.com/iliyamo/class-schedule/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}
