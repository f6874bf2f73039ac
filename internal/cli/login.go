package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ordersync/internal/store"
)

// LoginOptions хранит флаги `orderctl login`.
type LoginOptions struct {
	Username string
	Password string
}

// NewLoginCommand получает токен сессии. Токен печатается, а не сохраняется:
// его передают через --token или ORDERSYNC_CLIENT_TOKEN.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a session token",
		Long: `Authenticate against the Order API and print a bearer token.

Examples:
  export ORDERSYNC_CLIENT_TOKEN=$(orderctl login --username admin --password admin)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Password == "" {
				opts.Password = os.Getenv("ORDERSYNC_PASSWORD")
			}
			result, err := rootOpts.client().Login(cmd.Context(), opts.Username, opts.Password)
			if err != nil {
				return NewExitError(ExitFailure, store.DescribeError(err))
			}

			p := rootOpts.printer(cmd)
			if p.format == formatJSON {
				return p.json(map[string]string{
					"token":     result.Token,
					"expiresAt": result.ExpiresAt.Format(time.RFC3339),
				})
			}
			return p.message("%s", result.Token)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "user name (required)")
	_ = cmd.MarkFlagRequired("username")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password (or ORDERSYNC_PASSWORD)")

	return cmd
}
