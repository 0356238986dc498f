package transform

import (
	"context"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// LaborPolicy refines quarterly labor-market rates such as the PNAD
// unemployment rate. Changes are expressed in percentage points, not
// relative percent, because the underlying value is already a rate.
type LaborPolicy struct{}

func (p *LaborPolicy) Kind() catalog.Kind { return catalog.KindLabor }

func (p *LaborPolicy) Transform(_ context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error) {
	if err := requirePoints(ind, s); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Sort()

	timeseries.PeriodChange(out, "quarterly_change_pp", 1, timeseries.ChangeDiff, 1)
	timeseries.PeriodChange(out, "annual_change_pp", 4, timeseries.ChangeDiff, 1)
	timeseries.MovingAverage(out, "moving_avg_3q", 3)

	stampMeta(ind, out, timeseries.FrequencyQuarterly)
	return out, nil
}
