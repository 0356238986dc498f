// Package timeseries holds the canonical time-series model shared by every
// pipeline layer: a series of dated observations with an open set of derived
// metric columns, plus the normalizer and variation engine that produce them.
package timeseries

import (
	"sort"
	"time"
)

// Frequency is the observation cadence of a series.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Metadata identifies a series and records its provenance.
type Metadata struct {
	Indicator     string
	IndicatorName string
	Unit          string
	Frequency     Frequency
	Source        string
	ProcessedAt   time.Time
}

// Point is one dated observation. Derived metric columns live in Metrics;
// a metric absent from the map is a null cell, so consumers probe with
// Metric rather than assuming a universal schema.
type Point struct {
	Date    time.Time
	Value   float64
	Metrics map[string]float64
}

// SetMetric records a derived metric value on the point.
func (p *Point) SetMetric(name string, v float64) {
	if p.Metrics == nil {
		p.Metrics = make(map[string]float64)
	}
	p.Metrics[name] = v
}

// Metric returns a derived metric value and whether it is present.
func (p Point) Metric(name string) (float64, bool) {
	v, ok := p.Metrics[name]
	return v, ok
}

// Series is a time-ordered sequence of observations for one indicator.
type Series struct {
	Meta   Metadata
	Points []Point
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Points)
}

// Sort orders the points by ascending date. Every variation computation
// assumes this ordering.
func (s *Series) Sort() {
	sort.SliceStable(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
}

// Values returns the observation values in point order.
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Last returns the most recent observation.
func (s *Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// HasMetric reports whether any point carries the metric column.
func (s *Series) HasMetric(name string) bool {
	for _, p := range s.Points {
		if _, ok := p.Metrics[name]; ok {
			return true
		}
	}
	return false
}

// MetricColumns returns the sorted union of metric column names across
// all points.
func (s *Series) MetricColumns() []string {
	seen := make(map[string]struct{})
	for _, p := range s.Points {
		for name := range p.Metrics {
			seen[name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() *Series {
	clone := &Series{Meta: s.Meta, Points: make([]Point, len(s.Points))}
	for i, p := range s.Points {
		cp := Point{Date: p.Date, Value: p.Value}
		if p.Metrics != nil {
			cp.Metrics = make(map[string]float64, len(p.Metrics))
			for k, v := range p.Metrics {
				cp.Metrics[k] = v
			}
		}
		clone.Points[i] = cp
	}
	return clone
}

// Mean returns the arithmetic mean of the observation values, or 0 for an
// empty series.
func (s *Series) Mean() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
	}
	return sum / float64(len(s.Points))
}
