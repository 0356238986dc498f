package gold

import (
	"sort"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Health label thresholds over the composite score.
const (
	healthExcellentBelow   = 35.0
	healthGoodBelow        = 45.0
	healthStableBelow      = 55.0
	healthChallengingBelow = 70.0
)

// healthWeights is the contribution of each indicator to the composite
// health score. Absent indicators have their weight redistributed over the
// present ones.
var healthWeights = map[string]float64{
	"ipca":       0.35,
	"selic":      0.30,
	"desemprego": 0.35,
}

// HealthIndicator is the indicator key of the synthetic dashboard row
// carrying the composite health assessment.
const HealthIndicator = "economic_health"

// DashboardRow is the latest snapshot of one indicator. The extract also
// carries one synthetic HealthIndicator row whose value is the composite
// health score and whose label column holds the qualitative situation.
type DashboardRow struct {
	Indicator    string   `parquet:"indicator"`
	Name         string   `parquet:"name"`
	Unit         string   `parquet:"unit"`
	LatestDate   string   `parquet:"latest_date"`
	LatestValue  float64  `parquet:"latest_value"`
	Trend        *string  `parquet:"trend,optional"`
	AnnualChange *float64 `parquet:"annual_change,optional"`
	HealthScore  *float64 `parquet:"health_score,optional"`
	HealthLabel  *string  `parquet:"health_label,optional"`
}

// BuildDashboard reduces every available silver series to its latest
// observation, classifies the short-term trend, and appends the synthetic
// composite health row when enough weighted indicators are present.
func BuildDashboard(series map[string]*timeseries.Series) ([]DashboardRow, error) {
	if len(series) == 0 {
		return nil, apperrors.NewTransformationError("dashboard needs at least one silver series", nil)
	}

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]DashboardRow, 0, len(keys))
	for _, key := range keys {
		s := series[key]
		last, ok := s.Last()
		if !ok {
			continue
		}
		row := DashboardRow{
			Indicator:   key,
			Name:        s.Meta.IndicatorName,
			Unit:        s.Meta.Unit,
			LatestDate:  last.Date.Format("2006-01-02"),
			LatestValue: last.Value,
			Trend:       trend(s),
		}
		if kind, ok := kindOf(key); ok {
			row.AnnualChange = annualChange(kind, s)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewTransformationError("dashboard needs at least one non-empty silver series", nil)
	}

	if score, ok := healthScore(series); ok {
		label := healthLabel(score)
		rows = append(rows, DashboardRow{
			Indicator:   HealthIndicator,
			Name:        "Economic Health",
			Unit:        "score 0-100",
			LatestDate:  latestDate(series),
			LatestValue: score,
			HealthScore: ptr(score),
			HealthLabel: &label,
		})
	}
	return rows, nil
}

// latestDate is the most recent observation date across all series, used
// to date the synthetic health row.
func latestDate(series map[string]*timeseries.Series) string {
	var max time.Time
	for _, s := range series {
		if last, ok := s.Last(); ok && last.Date.After(max) {
			max = last.Date
		}
	}
	if max.IsZero() {
		return ""
	}
	return max.Format("2006-01-02")
}

func kindOf(key string) (catalog.Kind, bool) {
	ind, ok := catalog.Lookup(key)
	if !ok {
		return "", false
	}
	return ind.Kind, true
}

// trend classifies the last three observations: the newest against the
// oldest of the three. Fewer than three observations give no trend.
func trend(s *timeseries.Series) *string {
	n := len(s.Points)
	if n < 3 {
		return nil
	}
	first := s.Points[n-3].Value
	last := s.Points[n-1].Value
	var t string
	switch {
	case last > first:
		t = "rising"
	case last < first:
		t = "falling"
	default:
		t = "stable"
	}
	return &t
}

// annualChange picks the metric that expresses a twelve-month move for the
// indicator's kind, falling back to a positional computation for kinds
// whose silver series carries no such metric.
func annualChange(kind catalog.Kind, s *timeseries.Series) *float64 {
	last, ok := s.Last()
	if !ok {
		return nil
	}
	metric := ""
	switch kind {
	case catalog.KindPriceIndex:
		metric = "year_over_year_pct"
	case catalog.KindGDP:
		metric = "annual_change_pct"
	case catalog.KindLabor:
		metric = "annual_change_pp"
	}
	if metric != "" {
		if v, ok := last.Metric(metric); ok {
			return ptr(v)
		}
		return nil
	}

	// FX and policy rates: compare against the observation twelve months
	// back in the monthly series.
	n := len(s.Points)
	if n <= 12 {
		return nil
	}
	base := s.Points[n-13].Value
	switch kind {
	case catalog.KindFX:
		if base == 0 {
			return nil
		}
		return ptr((last.Value/base - 1) * 100)
	case catalog.KindPolicyRate:
		return ptr(last.Value - base)
	}
	return nil
}

// healthScore blends the latest readings of the weighted indicators, each
// normalized against its own historical mean. At least two of the weighted
// indicators must be present.
func healthScore(series map[string]*timeseries.Series) (float64, bool) {
	var weightSum float64
	type part struct {
		weight float64
		norm   float64
	}
	var parts []part
	for key, weight := range healthWeights {
		s, ok := series[key]
		if !ok || len(s.Points) == 0 {
			continue
		}
		last, _ := s.Last()
		// A zero historical mean gives no usable baseline; the
		// indicator still participates at its neutral norm.
		norm := 1.0
		if mean := s.Mean(); mean != 0 {
			norm = last.Value / mean
		}
		parts = append(parts, part{weight: weight, norm: norm})
		weightSum += weight
	}
	if len(parts) < 2 || weightSum == 0 {
		return 0, false
	}

	var blended float64
	for _, p := range parts {
		blended += p.weight / weightSum * p.norm
	}
	score := 50 * blended
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

func healthLabel(score float64) string {
	switch {
	case score < healthExcellentBelow:
		return "excellent"
	case score < healthGoodBelow:
		return "good"
	case score < healthStableBelow:
		return "stable"
	case score < healthChallengingBelow:
		return "challenging"
	default:
		return "critical"
	}
}
