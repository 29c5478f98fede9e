package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/phone-roster/internal/registration"
)

// NewSubmitCommand records a phone number for a student.
func NewSubmitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <reg-number> <phone-number>",
		Short: "Submit or update a student's phone number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.svc.Submit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), opts.Format, sub, func(w io.Writer) error {
				return writeSubmission(w, sub)
			})
		},
	}
}

func writeSubmission(w io.Writer, sub registration.Submission) error {
	verb := "Saved"
	if sub.Kind == registration.Update {
		verb = "Updated"
	}
	_, err := fmt.Fprintf(w, "%s %s for %s (%s)\n",
		verb, sub.Student.Phone(), sub.Student.Name, sub.Student.RegNumber)
	return err
}
