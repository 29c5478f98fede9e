package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/registration"
	"github.com/aanand-mishra/phone-roster/internal/types"
)

type listOutput struct {
	Students []types.Student       `json:"students" yaml:"students"`
	Progress registration.Progress `json:"progress" yaml:"progress"`
}

// NewListCommand prints the directory, optionally filtered.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the student directory and submission progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			all := a.svc.ListAll(cmd.Context())
			out := listOutput{
				Students: registration.Filter(all, filter),
				Progress: registration.Count(all),
			}

			return writeOutput(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
				return writeDirectory(w, out.Students, out.Progress)
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only show names or reg numbers containing this text")
	return cmd
}
