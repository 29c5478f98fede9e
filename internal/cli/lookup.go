package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/registration"
)

// NewLookupCommand prints one student by reg number.
func NewLookupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <reg-number>",
		Short: "Show a student by registration number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			st, ok := a.svc.Lookup(cmd.Context(), args[0])
			if !ok {
				return registration.ErrNotFound
			}

			return writeOutput(cmd.OutOrStdout(), opts.Format, st, func(w io.Writer) error {
				return writeStudent(w, st)
			})
		},
	}
}
