package transform

import (
	"context"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// FXPolicy refines daily exchange rates. The daily series is collapsed into
// monthly OHLC candles; the monthly value is the closing rate.
type FXPolicy struct{}

func (p *FXPolicy) Kind() catalog.Kind { return catalog.KindFX }

func (p *FXPolicy) Transform(_ context.Context, ind catalog.Indicator, s *timeseries.Series) (*timeseries.Series, error) {
	if err := requirePoints(ind, s); err != nil {
		return nil, err
	}
	in := s.Clone()
	in.Sort()
	out := timeseries.OHLCMonthly(in)

	timeseries.PeriodChange(out, "monthly_change_pct", 1, timeseries.ChangePercent, 100)
	timeseries.MovingAverage(out, "ma_3m", 3)
	timeseries.MovingAverage(out, "ma_6m", 6)
	timeseries.Volatility(out, "volatility_3m", 3)

	// Intra-month swing relative to the month's low.
	for i := range out.Points {
		high, hok := out.Points[i].Metric("high")
		low, lok := out.Points[i].Metric("low")
		if hok && lok && low != 0 {
			out.Points[i].SetMetric("monthly_amplitude_pct", (high-low)/low*100)
		}
	}

	stampMeta(ind, out, timeseries.FrequencyMonthly)
	return out, nil
}
