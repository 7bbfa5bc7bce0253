package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/maendeleo/core/chart"
)

func TestWriteXLSX(t *testing.T) {
	cfg := chart.Config{
		Labels: chart.WeekLabels(3),
		Datasets: []chart.Dataset{
			{Label: "Goals", Data: []null.Float64{null.Float64From(10), null.Float64From(20), null.Float64From(30)}},
			{Label: "Awe", Data: []null.Float64{null.Float64From(7.5), {}, null.Float64From(25)}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, cfg))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Week", "Goals", "Awe"},
		{"Week 1", "10", "7.5"},
		{"Week 2", "20"},
		{"Week 3", "30", "25"},
	}, rows)
}

func TestWriteXLSX_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, chart.Config{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Week"}}, rows)
}
