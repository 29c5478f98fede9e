package registration

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/aanand-mishra/phone-roster/internal/types"
)

// Filter keeps the students whose name contains query case-insensitively
// (Unicode case folding) or whose reg number contains query verbatim.
// An empty or blank query keeps everyone. Order is preserved.
func Filter(students []types.Student, query string) []types.Student {
	query = strings.TrimSpace(query)
	if query == "" {
		return students
	}

	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]types.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(fold.String(st.Name), needle) || strings.Contains(st.RegNumber, query) {
			out = append(out, st)
		}
	}
	return out
}
