package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)

	t.Run("parses bcb style rows and sorts by date", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"data", "valor"},
			Rows: []map[string]string{
				{"data": "01/02/2024", "valor": "0,84"},
				{"data": "01/01/2024", "valor": "0,53"},
			},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.NoError(t, err)
		require.Len(t, s.Points, 2)
		assert.True(t, s.Points[0].Date.Before(s.Points[1].Date))
		assert.InDelta(t, 0.53, s.Points[0].Value, 1e-9)
		assert.InDelta(t, 0.84, s.Points[1].Value, 1e-9)
	})

	t.Run("drops unparseable rows instead of failing", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "value"},
			Rows: []map[string]string{
				{"date": "2024-01-01", "value": "1.5"},
				{"date": "not-a-date", "value": "2.0"},
				{"date": "2024-03-01", "value": "n/a"},
			},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "selic"})
		require.NoError(t, err)
		assert.Len(t, s.Points, 1)
	})

	t.Run("thousands separator with comma decimals", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "value"},
			Rows:    []map[string]string{{"date": "2024-01-01", "value": "1.234,56"}},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "pib"})
		require.NoError(t, err)
		assert.InDelta(t, 1234.56, s.Points[0].Value, 1e-9)
	})

	t.Run("value column hint wins", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "taxa", "value"},
			Rows:    []map[string]string{{"date": "2024-01-01", "taxa": "7.9", "value": "99"}},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "desemprego", ValueColumn: "taxa"})
		require.NoError(t, err)
		assert.InDelta(t, 7.9, s.Points[0].Value, 1e-9)
	})

	t.Run("indicator named column", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"data", "cambio"},
			Rows:    []map[string]string{{"data": "02/01/2024", "cambio": "4.89"}},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "cambio"})
		require.NoError(t, err)
		assert.InDelta(t, 4.89, s.Points[0].Value, 1e-9)
	})

	t.Run("heuristic fallback to first non date column", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "something"},
			Rows:    []map[string]string{{"date": "2024-01-01", "something": "3.1"}},
		}

		s, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.NoError(t, err)
		assert.InDelta(t, 3.1, s.Points[0].Value, 1e-9)
	})

	t.Run("missing date column", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"value"},
			Rows:    []map[string]string{{"value": "1"}},
		}

		_, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
	})

	t.Run("missing hinted value column", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date"},
			Rows:    []map[string]string{{"date": "2024-01-01"}},
		}

		_, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca", ValueColumn: "taxa"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
	})

	t.Run("all rows dropped", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "value"},
			Rows:    []map[string]string{{"date": "bogus", "value": "bogus"}},
		}

		_, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
	})

	t.Run("idempotent over a clean series", func(t *testing.T) {
		table := &RawTable{
			Columns: []string{"date", "value"},
			Rows: []map[string]string{
				{"date": "2024-01-01", "value": "1.5"},
				{"date": "2024-02-01", "value": "2.5"},
			},
		}

		first, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.NoError(t, err)
		second, err := n.Normalize(table, NormalizeSpec{Indicator: "ipca"})
		require.NoError(t, err)
		assert.Equal(t, first.Values(), second.Values())
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"02/01/2024", "2024-01-02"},
		{"2024-01-02", "2024-01-02"},
		{"2024-01", "2024-01-01"},
		{"202401", "2024-01-01"},
		{"2024-01-02 13:45:00", "2024-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestQuarterKey(t *testing.T) {
	assert.Equal(t, "2024Q1", QuarterKey(mustDate(t, "2024-03-31")))
	assert.Equal(t, "2024Q4", QuarterKey(mustDate(t, "2024-10-01")))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}
