package transform

import (
	"context"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// PriceIndexPolicy refines monthly inflation indices such as IPCA. Input
// values are the monthly variation in percent.
type PriceIndexPolicy struct{}

func (p *PriceIndexPolicy) Kind() catalog.Kind { return catalog.KindPriceIndex }

func (p *PriceIndexPolicy) Transform(_ context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error) {
	if err := requirePoints(ind, s); err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Sort()

	timeseries.PeriodChange(out, "monthly_change_pct", 1, timeseries.ChangePercent, 100)
	timeseries.PeriodChange(out, "year_over_year_pct", 12, timeseries.ChangePercent, 100)
	timeseries.MovingAverage(out, "moving_avg_3m", 3)
	timeseries.YearToDate(out, "ytd_accumulated")

	stampMeta(ind, out, timeseries.FrequencyMonthly)
	return out, nil
}
