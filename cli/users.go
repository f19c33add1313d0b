package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/dbprobe/engine/dburl"
	"github.com/compozy/dbprobe/engine/user"
	"github.com/compozy/dbprobe/engine/verify"
)

func addUserFlags(cmd *cobra.Command, email, username, password string) {
	cmd.Flags().String("email", email, "User email address")
	cmd.Flags().String("username", username, "Username")
	cmd.Flags().String("password", password, "Plain-text password, stored as a bcrypt hash")
}

func userInput(cmd *cobra.Command) (user.NewInput, error) {
	email, err := cmd.Flags().GetString("email")
	if err != nil {
		return user.NewInput{}, fmt.Errorf("failed to get email flag: %w", err)
	}
	username, err := cmd.Flags().GetString("username")
	if err != nil {
		return user.NewInput{}, fmt.Errorf("failed to get username flag: %w", err)
	}
	password, err := cmd.Flags().GetString("password")
	if err != nil {
		return user.NewInput{}, fmt.Errorf("failed to get password flag: %w", err)
	}
	return user.NewInput{Email: email, Username: username, Password: password}, nil
}

// EnsureUserCmd returns the skip-if-exists seeding command.
func EnsureUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure-user",
		Short: "Create the test user unless it already exists",
		Long: `Look the user up by email and create it only when it is missing.
Running the command twice leaves exactly one user.`,
		Args: cobra.NoArgs,
		RunE: runEnsureUser,
	}
	addUserFlags(cmd, "test@example.com", "testuser", "password123")
	return cmd
}

func runEnsureUser(cmd *cobra.Command, _ []string) error {
	in, err := userInput(cmd)
	if err != nil {
		return err
	}
	p := newPrinter(cmd.OutOrStdout())
	p.Line("Testing database connection and creating a new user...")
	return withSession(cmd, func(ctx context.Context, p *printer, s *verify.Session) error {
		p.Success("Successfully connected to the database!")
		res, err := verify.NewEnsureUser(s, in).Execute(ctx)
		if err != nil {
			return err
		}
		if !res.Created {
			p.Warning("User with email %s already exists (ID: %s)", res.User.Email, res.User.ID)
			return nil
		}
		p.Success("Successfully created new user: %s (ID: %s)", res.User.Username, res.User.ID)
		return nil
	})
}

// InsertUserCmd returns the fail-loudly insert command.
func InsertUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert-user",
		Short: "Insert a user, count and fetch it in one transaction",
		Long: `Insert a user, count the rows of the user table and read the new row
back, all in one transaction. A duplicate email rolls the transaction back.`,
		Args: cobra.NoArgs,
		RunE: runInsertUser,
	}
	addUserFlags(cmd, "neontest@example.com", "neontest", "securepassword123")
	return cmd
}

func runInsertUser(cmd *cobra.Command, _ []string) error {
	in, err := userInput(cmd)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, p *printer, s *verify.Session) error {
		if !isHosted(cmd) {
			p.Warning("Not a hosted (%s) database URL, inserting anyway", dburl.HostedProviderSuffix)
		}
		res, err := verify.NewInsertUser(s, in).Execute(ctx)
		if err != nil {
			return err
		}
		p.Success("Successfully inserted user!")
		p.Field("User ID", res.User.ID)
		p.Field("Email", res.User.Email)
		p.Field("Username", res.User.Username)
		p.Field("Total user count", res.Count)
		if res.Fetched != nil {
			p.Field("Fetched user", fmt.Sprintf("(%s, %s, %s, %s)",
				res.Fetched.ID, res.Fetched.Email, res.Fetched.Username,
				res.Fetched.CreatedAt.Format("2006-01-02 15:04:05")))
		}
		p.Success("Transaction committed successfully!")
		return nil
	})
}

// isHosted reports whether the configured URL points at the hosted provider.
func isHosted(cmd *cobra.Command) bool {
	cfg, err := configFrom(cmd)
	if err != nil {
		return false
	}
	d, err := dburl.Parse(cfg.Database.URL.Value())
	if err != nil {
		return false
	}
	return d.RequiresTLS()
}
