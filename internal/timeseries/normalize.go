package timeseries

import (
	"log/slog"
	"strconv"
	"strings"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
)

// NormalizeSpec tells the normalizer which indicator a raw table belongs to
// and, optionally, which column carries its values.
type NormalizeSpec struct {
	Indicator string
	// ValueColumn is a catalog-supplied hint. When empty the normalizer
	// falls back to column-name heuristics.
	ValueColumn string
}

// Normalizer converts a raw bronze table into a clean, date-sorted Series.
// Rows with unparseable dates or values are dropped and counted rather than
// failing the whole table.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer that logs drops and heuristic column
// picks through the given logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize resolves the date and value columns of the table, parses every
// row, and returns the surviving points sorted by ascending date. It fails
// only when no date column exists, no value column can be resolved, or no
// row survives parsing.
func (n *Normalizer) Normalize(table *RawTable, spec NormalizeSpec) (*Series, error) {
	dateCol, err := n.resolveDateColumn(table)
	if err != nil {
		return nil, err
	}
	valueCol, err := n.resolveValueColumn(table, spec, dateCol)
	if err != nil {
		return nil, err
	}

	series := &Series{Meta: Metadata{Indicator: spec.Indicator}}
	dropped := 0
	for _, row := range table.Rows {
		date, derr := ParseDate(row[dateCol])
		if derr != nil {
			dropped++
			continue
		}
		value, verr := parseDecimal(row[valueCol])
		if verr != nil {
			dropped++
			continue
		}
		series.Points = append(series.Points, Point{Date: date, Value: value})
	}

	if dropped > 0 {
		metrics.RowsDropped.WithLabelValues(spec.Indicator).Add(float64(dropped))
		n.logger.Warn("dropped unparseable rows",
			slog.String("indicator", spec.Indicator),
			slog.Int("dropped", dropped),
			slog.Int("total", len(table.Rows)))
	}
	if len(series.Points) == 0 {
		return nil, apperrors.NewDataFormatError("no parseable rows in raw table", nil).
			WithContext("indicator", spec.Indicator)
	}

	series.Sort()
	return series, nil
}

func (n *Normalizer) resolveDateColumn(table *RawTable) (string, error) {
	for _, candidate := range []string{"date", "data"} {
		if table.HasColumn(candidate) {
			return candidate, nil
		}
	}
	return "", apperrors.NewDataFormatError("raw table has no date column", nil)
}

func (n *Normalizer) resolveValueColumn(table *RawTable, spec NormalizeSpec, dateCol string) (string, error) {
	if spec.ValueColumn != "" {
		if table.HasColumn(spec.ValueColumn) {
			return spec.ValueColumn, nil
		}
		return "", apperrors.NewDataFormatError("raw table is missing the expected value column", nil).
			WithContext("indicator", spec.Indicator).
			WithContext("value_column", spec.ValueColumn)
	}
	for _, candidate := range []string{"value", "valor", spec.Indicator} {
		if candidate != "" && table.HasColumn(candidate) {
			return candidate, nil
		}
	}
	// Last resort: first column that is not the date. Logged because a
	// silently wrong pick here corrupts every downstream layer.
	for _, c := range table.Columns {
		if c != dateCol {
			n.logger.Warn("value column resolved heuristically",
				slog.String("indicator", spec.Indicator),
				slog.String("column", c))
			return c, nil
		}
	}
	return "", apperrors.NewDataFormatError("raw table has no value column", nil).
		WithContext("indicator", spec.Indicator)
}

// parseDecimal accepts both dot and Brazilian comma decimal separators.
func parseDecimal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return strconv.ParseFloat(raw, 64)
}
