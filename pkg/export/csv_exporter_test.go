package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Date", "Total"},
		Rows: [][]string{
			{"2026-08-01", "79.90"},
			{"2026-08-02", "39.95"},
		},
		Footer: []string{"Total", "119.85"},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Date,Total\n2026-08-01,79.90\n2026-08-02,39.95\nTotal,119.85\n", string(out))
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"only-one"}},
	})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Title:   "Sales Report",
		Headers: []string{"Date", "Total"},
		Rows:    [][]string{{"2026-08-01", "79.90"}},
		Footer:  []string{"Total", "79.90"},
	}

	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
