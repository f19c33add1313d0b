package logger

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SetupLogger installs the process logger from CLI-level settings.
// The DEBUG setting forces debug level regardless of logLevel.
func SetupLogger(logLevel string, logJSON, logSource, debug bool) Logger {
	level := LogLevel(logLevel)
	switch level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, DisabledLevel:
	default:
		level = InfoLevel
	}
	if debug {
		level = DebugLevel
	}
	Init(&Config{
		Level:      level,
		Output:     os.Stderr,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
	return defaultLogger
}

// GetLogSource reads the log-source flag. Level and format come from the
// loaded configuration.
func GetLogSource(cmd *cobra.Command) (bool, error) {
	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return false, fmt.Errorf("failed to get log-source flag: %w", err)
	}
	return logSource, nil
}
