package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/forage/internal/sqlite"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all forageables as JSONL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				if output == "" || output == "-" {
					_, err := export(ctx, s, cmd.OutOrStdout())
					return err
				}

				f, err := os.Create(output)
				if err != nil {
					return userError("creating %s: %w", output, err)
				}
				n, err := export(ctx, s, f)
				if cerr := f.Close(); err == nil && cerr != nil {
					err = sysError("closing %s: %w", output, cerr)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d forageables to %s\n", n, output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func export(ctx context.Context, s *session, w io.Writer) (int, error) {
	n, err := sqlite.Export(ctx, s.dao, w)
	if err != nil {
		return n, sysError("exporting: %w", err)
	}
	s.logger.Info("export complete", "records", n)
	return n, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Insert forageables from a JSONL file",
		Long: `Import reads one JSON object per line. A record with an id replaces
the stored forageable with that id; a record without one is added.
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return withSession(cmd, func(ctx context.Context, s *session) error {
				var r io.Reader = cmd.InOrStdin()
				if path != "-" {
					f, err := os.Open(path)
					if err != nil {
						return userError("opening %s: %w", path, err)
					}
					defer f.Close()
					r = f
				}

							n, err := sqlite.Import(ctx, s.dao, r)
				if err != nil {
					return sysError("importing: %w", err)
				}
				s.logger.Info("import complete", "records", n)
				if !flags.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %d forageables\n", n)
				}
				return nil
			})
		},
	}
}
