package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		inSeason bool
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <address>",
		Short: "Add a forageable",
		Example: `  forage add "Chanterelle" "North ridge trail, mile 2" --in-season
  forage add "Elderberry" "Creek path" --notes "ripe late August"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, address := args[0], args[1]
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if !s.vm.IsValidEntry(name, address) {
					return userError("name and address must not be blank")
				}
				s.vm.AddForageable(name, address, inSeason, notes)
				if err := s.settle(); err != nil {
					return err
				}
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&inSeason, "in-season", false, "mark as currently in season")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}
