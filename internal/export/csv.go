// Package export writes the student directory as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/aanand-mishra/phone-roster/internal/types"
)

// FileName is the suggested download name for the export.
const FileName = "student_records.csv"

// Header is the first CSV record.
var Header = []string{"Name", "Registration No", "Phone Number", "Status"}

// WriteCSV writes Header and one record per student, in the given order.
// A pending student's phone cell is empty.
func WriteCSV(w io.Writer, students []types.Student) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for _, st := range students {
		if err := cw.Write([]string{st.Name, st.RegNumber, st.Phone(), st.Status()}); err != nil {
			return fmt.Errorf("WriteCSV: %s: %w", st.RegNumber, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
