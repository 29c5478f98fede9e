package export

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phone-roster/internal/types"
)

func TestWriteCSV(t *testing.T) {
	phone := "03001234567"
	students := []types.Student{
		{Name: "Abdul Ahad Ali Khan", RegNumber: "2023004"},
		{Name: "Arsalan Khalil", RegNumber: "2023130", PhoneNumber: &phone},
		{Name: "Doe, Jane", RegNumber: "2023999"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, students))

	g := goldie.New(t)
	g.Assert(t, "directory", buf.Bytes())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, "Name,Registration No,Phone Number,Status\n", buf.String())
}
