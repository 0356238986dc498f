package transform

import (
	"context"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// GDPPolicy refines quarterly GDP level series.
type GDPPolicy struct{}

func (p *GDPPolicy) Kind() catalog.Kind { return catalog.KindGDP }

func (p *GDPPolicy) Transform(_ context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error) {
	if err := requirePoints(ind, s); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Sort()

	timeseries.PeriodChange(out, "quarterly_change_pct", 1, timeseries.ChangePercent, 100)
	timeseries.PeriodChange(out, "annual_change_pct", 4, timeseries.ChangePercent, 100)
	// Trailing four quarters approximate the annualized level.
	timeseries.RollingSum(out, "accumulated_value", 4)

	stampMeta(ind, out, timeseries.FrequencyQuarterly)
	return out, nil
}
