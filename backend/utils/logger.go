package utils

import (
	"io"
	"log"
	"os"
)

type LoggerConfig struct {
	// Format is "text" or "json".
	Format string
	Output io.Writer
	// EnableColors tints the prefix for terminals.
	EnableColors bool
}

// InitLogger builds the service logger. With no config it writes text to
// stdout.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[EduLMS] "

	var logger *log.Logger
	if cfg.Format == "json" {
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
	}

	return logger
}
