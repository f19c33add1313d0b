package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compozy/dbprobe/engine/dburl"
	"github.com/compozy/dbprobe/pkg/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration diagnostics",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

// configShowCmd shows the current configuration with source information
func configShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show configuration values and where each one came from",
		Long: `Display the resolved configuration. Secrets are redacted and each value
is tagged with its source (cli, env, or default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (json, yaml, table)")
	return cmd
}

func runConfigShow(cmd *cobra.Command, format string) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	svc := config.ServiceFromContext(cmd.Context())
	values := configValues(cfg)
	sources := make(map[string]config.SourceType, len(values))
	for path := range values {
		source := config.SourceOf(svc, path)
		if source == "" {
			source = config.SourceDefault
		}
		sources[path] = source
	}
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return outputJSON(out, values, sources)
	case "yaml":
		return outputYAML(out, values, sources)
	case "table", "":
		outputTable(out, cfg, values, sources)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// outputJSON outputs configuration as JSON
func outputJSON(w io.Writer, values map[string]string, sources map[string]config.SourceType) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{"config": values, "sources": sources})
}

// outputYAML outputs configuration as YAML
func outputYAML(w io.Writer, values map[string]string, sources map[string]config.SourceType) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]any{"config": values, "sources": sources}); err != nil {
		return err
	}
	return encoder.Close()
}

func outputTable(
	w io.Writer,
	cfg *config.Config,
	values map[string]string,
	sources map[string]config.SourceType,
) {
	p := newPrinter(w)
	for _, f := range config.Fields() {
		env := f.EnvVar
		if env == "" {
			env = "-"
		}
		label := fmt.Sprintf("%-26s %-20s", f.Path, env)
		p.Field(label, fmt.Sprintf("%s (%s)", values[f.Path], sources[f.Path]))
	}
	if cfg.UsesDefaultSecrets() {
		p.Warning("Auth secrets use the placeholder value; change them outside development")
	}
}

// configValues returns every configuration value by path. The database URL
// is shown with only its password masked.
func configValues(cfg *config.Config) map[string]string {
	out := cfg.Values()
	out["database.url"] = dburl.Redact(cfg.Database.URL.Value())
	return out
}
