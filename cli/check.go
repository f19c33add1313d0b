package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/compozy/dbprobe/engine/verify"
)

const versionDisplayLen = 50

// CheckCmd returns the connectivity check command.
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Connect and report server version, known tables and user count",
		Example: `  # Check the database configured in .env
  dbprobe check

  # Check an explicit connection string
  dbprobe check --database-url "postgresql+asyncpg://u:p@host/db?sslmode=require"`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, p *printer, s *verify.Session) error {
		p.Success("Successfully connected to the database (%s)!", s.Driver())
		res, err := verify.NewProbe(s).Execute(ctx)
		if res != nil && res.Version != "" {
			p.Field("Database version", truncate(res.Version, versionDisplayLen))
		}
		if err != nil {
			return err
		}
		p.Field("Found tables", "["+strings.Join(res.Tables, ", ")+"]")
		p.Field("Current user count", res.UserCount)
		return nil
	})
}
