package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/compozy/dbprobe/engine/dburl"
)

// NormalizeCmd returns the diagnostic command that prints each
// normalization step without connecting.
func NormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Show how the connection string is rewritten (passwords redacted)",
		Args:  cobra.NoArgs,
		RunE:  runNormalize,
	}
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	cfg, err := configFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout())
	res, err := dburl.NormalizeContext(ctx, cfg.Database.URL.Value())
	if err != nil {
		return reportError(ctx, p, err)
	}
	p.Field("Original URL", dburl.Redact(res.Original))
	p.Field("After driver replacement", dburl.Redact(res.Intermediate))
	p.Field("Final processed URL", dburl.Redact(res.URL))
	p.Field("Scheme", res.Scheme)
	for _, kv := range res.Params {
		p.Field("Including parameter", dburl.Redact(kv.Key+"="+kv.Value))
	}
	if len(res.Dropped) > 0 {
		p.Field("Dropped parameters", strings.Join(res.Dropped, ", "))
	}
	if res.DisableSameThreadCheck {
		p.Field("Same-thread check", "disabled")
	}
	if res.Fallback != nil {
		p.Warning("%v", res.Fallback)
		return nil
	}
	d, err := res.Descriptor()
	if err != nil {
		return reportError(ctx, p, err)
	}
	if d.Scheme.IsPostgres() {
		p.Field("Driver DSN", d.Redacted())
		if d.RequiresTLS() {
			p.Field("TLS", "sslmode="+d.SSLMode())
		}
	} else {
		p.Field("Database file", d.Path)
	}
	return nil
}
