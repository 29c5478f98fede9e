package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/phone-roster/internal/registration"
	"github.com/aanand-mishra/phone-roster/internal/types"
)

// writeOutput renders v as JSON or YAML, or calls text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func phoneOrDash(st types.Student) string {
	if st.HasPhone() {
		return st.Phone()
	}
	return "-"
}

func writeStudent(w io.Writer, st types.Student) error {
	phone := "Not Submitted"
	if st.HasPhone() {
		phone = st.Phone()
	}
	_, err := fmt.Fprintf(w, "Name:       %s\nReg Number: %s\nPhone:      %s\nStatus:     %s\n",
		st.Name, st.RegNumber, phone, st.Status())
	return err
}

func writeDirectory(w io.Writer, students []types.Student, p registration.Progress) error {
	if _, err := fmt.Fprintf(w, "%-24s %-10s %-13s %s\n", "NAME", "REG NO", "PHONE", "STATUS"); err != nil {
		return err
	}
	for _, st := range students {
		if _, err := fmt.Fprintf(w, "%-24s %-10s %-13s %s\n",
			st.Name, st.RegNumber, phoneOrDash(st), st.Status()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nSubmitted: %d / %d\n", p.Submitted, p.Total)
	return err
}
