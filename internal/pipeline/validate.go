package pipeline

import (
	"fmt"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Report is the data-quality summary of one refined series. It is advisory
// by default; strict validation turns any issue into a pipeline failure.
type Report struct {
	Indicator  string
	Rows       int
	NullRatios map[string]float64
	Issues     []string
}

// OK reports whether the series passed every check.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) addIssue(format string, args ...interface{}) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// validateSeries checks a refined series for structural problems: missing
// identity metadata, duplicate observation dates, and metric columns whose
// null ratio exceeds the threshold. Lagged metrics always start with nulls,
// so threshold breaches are reported rather than assumed fatal.
func validateSeries(s *timeseries.Series, nullRatioThreshold float64) *Report {
	report := &Report{
		Indicator:  s.Meta.Indicator,
		Rows:       len(s.Points),
		NullRatios: make(map[string]float64),
	}

	if s.Meta.Indicator == "" {
		report.addIssue("series has no indicator identity")
	}
	if len(s.Points) == 0 {
		report.addIssue("series has no rows")
		return report
	}

	seen := make(map[string]bool, len(s.Points))
	for _, p := range s.Points {
		key := p.Date.Format("2006-01-02")
		if seen[key] {
			report.addIssue("duplicate observation date %s", key)
		}
		seen[key] = true
	}

	total := float64(len(s.Points))
	for _, col := range s.MetricColumns() {
		nulls := 0
		for _, p := range s.Points {
			if _, ok := p.Metric(col); !ok {
				nulls++
			}
		}
		ratio := float64(nulls) / total
		report.NullRatios[col] = ratio
		if ratio > nullRatioThreshold {
			report.addIssue("metric %s null ratio %.2f exceeds threshold %.2f", col, ratio, nullRatioThreshold)
		}
	}
	return report
}
