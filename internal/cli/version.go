package cli

import (
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ordersync/internal/version"
)

// NewVersionCommand печатает сведения о сборке.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := rootOpts.printer(cmd)
			if p.format == formatJSON {
				return p.json(map[string]string{
					"version": version.GetVersion(),
					"commit":  version.GetCommit(),
					"date":    version.GetDate(),
				})
			}
			return p.message("%s", version.String())
		},
	}
}
