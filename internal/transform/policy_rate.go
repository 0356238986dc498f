package transform

import (
	"context"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// PolicyRatePolicy refines daily policy rates such as SELIC. The daily
// series is collapsed to a monthly mean before the rate-change metrics are
// derived.
type PolicyRatePolicy struct{}

func (p *PolicyRatePolicy) Kind() catalog.Kind { return catalog.KindPolicyRate }

func (p *PolicyRatePolicy) Transform(_ context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error) {
	if err := requirePoints(ind, s); err != nil {
		return nil, err
	}
	in := s.Clone()
	in.Sort()
	out := timeseries.ResampleMonthly(in)

	// Rate moves are conventionally quoted in basis points.
	timeseries.PeriodChange(out, "change_bps", 1, timeseries.ChangeDiff, 100)
	timeseries.MovingAverage(out, "moving_avg_3m", 3)

	stampMeta(ind, out, timeseries.FrequencyMonthly)
	return out, nil
}
