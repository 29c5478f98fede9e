package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/export"
	"github.com/aanand-mishra/phone-roster/internal/types"
)

// NewExportCommand writes the directory as CSV. --format does not apply.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the directory as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			students := a.svc.ListAll(cmd.Context())
			if out == "" {
				return export.WriteCSV(cmd.OutOrStdout(), students)
			}

			if err := writeFile(out, students); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout (e.g. "+export.FileName+")")
	return cmd
}

// writeFile writes the CSV to path. A failed Close is reported, since that
// is where a short write to disk surfaces.
func writeFile(path string, students []types.Student) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, students); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
