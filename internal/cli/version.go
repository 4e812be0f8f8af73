package cli

import (
	"fmt"

	"github.com/mesh-intelligence/forage/pkg/forage"
	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/forage"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forage version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"version": forage.Version,
					"module":  modulePath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forage v%s\nmodule: %s\n", forage.Version, modulePath)
			return nil
		},
	}
}
