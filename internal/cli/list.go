package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List forageables by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				all, err := first(ctx, s.vm.AllForageables())
				if err != nil {
					return sysError("listing forageables: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), all)
				}
				renderTable(cmd.OutOrStdout(), all)
				return nil
			})
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the list again whenever it changes",
		Long:  "Watch prints the current list of forageables, then prints it again\nafter every change until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				snapshots := make(chan []types.Forageable, 1)
				cancel := s.vm.AllForageables().Observe(func(fs []types.Forageable) {
					select {
					case <-snapshots:
					default:
					}
					snapshots <- fs
				})
				defer cancel()

				out := cmd.OutOrStdout()
				for n := 0; ; n++ {
					select {
					case <-ctx.Done():
						if errors.Is(ctx.Err(), context.Canceled) {
							return nil
						}
						return ctx.Err()
					case fs := <-snapshots:
						if flags.jsonMode {
							if err := writeJSON(out, fs); err != nil {
								return err
							}
							continue
						}
						if n > 0 {
							fmt.Fprintln(out)
						}
						renderTable(out, fs)
					}
				}
			})
		},
	}
}
