package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a forageable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				f, err := s.lookup(ctx, id)
				if err != nil {
					return err
				}
				s.vm.DeleteForageable(f)
				if err := s.settle(); err != nil {
					return err
				}
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d (%s)\n", f.ID, f.Name)
				}
				return nil
			})
		},
	}
}
