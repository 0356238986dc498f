package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/gold"
)

func ptr(v float64) *float64 { return &v }
func sptr(s string) *string  { return &s }

func TestWriteDashboardExcel(t *testing.T) {
	rows := []gold.DashboardRow{
		{
			Indicator:    "ipca",
			Name:         "IPCA",
			Unit:         "% a.m.",
			LatestDate:   "2024-03-01",
			LatestValue:  0.71,
			Trend:        sptr("rising"),
			AnnualChange: ptr(4.8),
		},
		{
			Indicator:   "selic",
			Name:        "SELIC",
			Unit:        "% a.a.",
			LatestDate:  "2024-03-01",
			LatestValue: 10.75,
		},
		{
			Indicator:   gold.HealthIndicator,
			Name:        "Economic Health",
			Unit:        "score 0-100",
			LatestDate:  "2024-03-01",
			LatestValue: 49.3,
			HealthScore: ptr(49.3),
			HealthLabel: sptr("stable"),
		},
	}

	path := filepath.Join(t.TempDir(), "dashboard.xlsx")
	require.NoError(t, WriteDashboardExcel(rows, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Dashboard", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Indicator", got)

	got, err = f.GetCellValue("Dashboard", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ipca", got)

	got, err = f.GetCellValue("Dashboard", "F2")
	require.NoError(t, err)
	assert.Equal(t, "rising", got)

	got, err = f.GetCellValue("Dashboard", "F3")
	require.NoError(t, err)
	assert.Empty(t, got, "null trend leaves the cell empty")

	got, err = f.GetCellValue("Dashboard", "I4")
	require.NoError(t, err)
	assert.Equal(t, "stable", got)
}

func TestWriteDashboardExcelEmpty(t *testing.T) {
	err := WriteDashboardExcel(nil, filepath.Join(t.TempDir(), "dashboard.xlsx"))
	assert.Error(t, err)
}
