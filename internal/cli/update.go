package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var (
		name     string
		address  string
		inSeason bool
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a forageable",
		Long:  "Update replaces the stored record. Fields whose flags are not given\nkeep their current values.",
		Example: `  forage update 3 --in-season=false
  forage update 3 --address "South ridge" --notes ""`,
		Args: cobra.ExactArgs(1),
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
				fl := cmd.Flags()
				if fl.Changed("name") {
					f.Name = name
				}
				if fl.Changed("address") {
					f.Address = address
				}
				if fl.Changed("in-season") {
					f.InSeason = inSeason
				}
				if fl.Changed("notes") {
					f.Notes = notes
				}
				if !s.vm.IsValidEntry(f.Name, f.Address) {
					return userError("name and address must not be blank")
				}

				s.vm.UpdateForageable(f.ID, f.Name, f.Address, f.InSeason, f.Notes)
				if err := s.settle(); err != nil {
					return err
				}
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Updated %d\n", f.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&address, "address", "", "new address")
	cmd.Flags().BoolVar(&inSeason, "in-season", false, "whether it is in season")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	return cmd
}
