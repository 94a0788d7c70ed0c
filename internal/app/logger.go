package app

import (
	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/logger"
)

// InitializeLogger initializes the global logger.
func InitializeLogger(cfg config.LogConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Pretty)
}
