package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCSV(t *testing.T) {
	table := Table{Headers: []string{"Roll", "Name", "Seat"}}
	table.AddRow("2022-CS-001", "Student One", "A1")
	table.AddRow("2022-CS-002", "Student Two")         // short row padded
	table.AddRow("2022-CS-003", "S3", "A3", "ignored") // long row truncated

	data, err := table.CSV()
	require.NoError(t, err)
	assert.Equal(t,
		"Roll,Name,Seat\n2022-CS-001,Student One,A1\n2022-CS-002,Student Two,\n2022-CS-003,S3,A3\n",
		string(data))
}

func TestTableCSVRequiresHeaders(t *testing.T) {
	_, err := Table{}.CSV()
	require.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	sections := []ReportSection{
		{
			Title: "Exam Timetable",
			Table: Table{
				Headers: []string{"Date", "Course"},
				Rows:    [][]string{{"2026-03-02", "CS101"}, {"2026-03-02", "CS205"}},
			},
		},
	}

	data, err := RenderPDF("Examination Schedule", sections)
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderPDFRequiresSections(t *testing.T) {
	_, err := RenderPDF("empty", nil)
	require.Error(t, err)
}
