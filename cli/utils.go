package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagDef binds a command line flag to a configuration path.
type flagDef struct {
	flagName string
	key      string
	getter   func(fs *pflag.FlagSet, name string) (any, error)
}

func getString(fs *pflag.FlagSet, name string) (any, error)   { return fs.GetString(name) }
func getBool(fs *pflag.FlagSet, name string) (any, error)     { return fs.GetBool(name) }
func getDuration(fs *pflag.FlagSet, name string) (any, error) { return fs.GetDuration(name) }

var configFlags = []flagDef{
	// Database flags
	{"database-url", "database.url", getString},
	{"connect-timeout", "database.connect_timeout", getDuration},
	{"user-table", "database.user_table", getString},
	{"username-column", "database.username_column", getString},

	// Runtime flags
	{"log-level", "runtime.log_level", getString},
	{"log-json", "runtime.log_json", getBool},
	{"debug", "runtime.debug", getBool},
}

// extractCLIFlags extracts command line flags from a cobra command into a map
// keyed by configuration path. Only flags changed by the user are included.
func extractCLIFlags(cmd *cobra.Command, flags map[string]any) {
	fs := cmd.Flags()
	for _, def := range configFlags {
		if fs.Lookup(def.flagName) == nil || !fs.Changed(def.flagName) {
			continue
		}
		if value, err := def.getter(fs, def.flagName); err == nil {
			flags[def.key] = value
		}
	}
}

// loadEnvFile loads environment variables from a file with security validation.
// A missing file is not an error. Variables already set in the environment win.
func loadEnvFile(cmd *cobra.Command) (string, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return "", nil
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(pwd, envFile)
	}
	absPath, err := filepath.Abs(filepath.Clean(envFile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve env file path: %w", err)
	}
	if !isPathWithinDirectory(absPath, pwd) {
		return "", fmt.Errorf("env file path '%s' is outside the project directory", envFile)
	}
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return absPath, nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	return absPath, nil
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir) || absPath == strings.TrimSuffix(absDir, string(filepath.Separator))
}
