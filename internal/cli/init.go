package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/registration"
)

// NewInitCommand creates and seeds the store, recreating a broken SQLite
// file once if needed.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create and seed the student store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.svc.Initialize(cmd.Context()); err != nil {
				return err
			}

			p := a.svc.Progress(cmd.Context())
			return writeOutput(cmd.OutOrStdout(), opts.Format, p, func(w io.Writer) error {
				return writeInit(w, p)
			})
		},
	}
}

func writeInit(w io.Writer, p registration.Progress) error {
	_, err := fmt.Fprintf(w, "roster ready: %d students, %d submitted\n", p.Total, p.Submitted)
	return err
}
