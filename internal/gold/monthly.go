// Package gold builds the aggregated analytical products of the gold
// layer from the latest silver snapshots: a cross-indicator monthly panel,
// a labor-market panel, and an executive dashboard extract.
package gold

import (
	"sort"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// MonthlyPanelRow is one month of the joined inflation, policy-rate and
// exchange-rate panel. Optional columns are null when an indicator has no
// observation for the month.
type MonthlyPanelRow struct {
	YearMonth        string   `parquet:"year_month"`
	IPCAMonthly      *float64 `parquet:"ipca_monthly_pct,optional"`
	IPCAAnnual       *float64 `parquet:"ipca_annual_change_pct,optional"`
	SelicRate        *float64 `parquet:"selic_rate,optional"`
	CambioClose      *float64 `parquet:"cambio_close,optional"`
	CambioVolatility *float64 `parquet:"cambio_volatility,optional"`
	RealInterestRate *float64 `parquet:"real_interest_rate,optional"`
	EconomicPressure *float64 `parquet:"economic_pressure_index,optional"`
}

// BuildMonthlyPanel outer-joins the ipca, selic and cambio silver series on
// calendar month. All three series must be present; with fewer the panel
// would be mostly holes and is skipped instead.
func BuildMonthlyPanel(series map[string]*timeseries.Series) ([]MonthlyPanelRow, error) {
	ipca, okIPCA := series["ipca"]
	selic, okSelic := series["selic"]
	cambio, okCambio := series["cambio"]
	if !okIPCA || !okSelic || !okCambio {
		return nil, apperrors.NewTransformationError("monthly panel needs ipca, selic and cambio silver data", nil).
			WithContext("have_ipca", okIPCA).
			WithContext("have_selic", okSelic).
			WithContext("have_cambio", okCambio)
	}

	rows := make(map[string]*MonthlyPanelRow)
	at := func(month string) *MonthlyPanelRow {
		if r, ok := rows[month]; ok {
			return r
		}
		r := &MonthlyPanelRow{YearMonth: month}
		rows[month] = r
		return r
	}

	for _, p := range ipca.Points {
		r := at(timeseries.MonthKey(p.Date))
		r.IPCAMonthly = ptr(p.Value)
		if v, ok := p.Metric("year_over_year_pct"); ok {
			r.IPCAAnnual = ptr(v)
		}
	}
	for _, p := range selic.Points {
		at(timeseries.MonthKey(p.Date)).SelicRate = ptr(p.Value)
	}
	for _, p := range cambio.Points {
		r := at(timeseries.MonthKey(p.Date))
		r.CambioClose = ptr(p.Value)
		if v, ok := p.Metric("volatility_3m"); ok {
			r.CambioVolatility = ptr(v)
		}
	}

	months := make([]string, 0, len(rows))
	for m := range rows {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyPanelRow, 0, len(months))
	for _, m := range months {
		r := rows[m]
		if r.SelicRate != nil && r.IPCAMonthly != nil {
			r.RealInterestRate = ptr(*r.SelicRate - *r.IPCAMonthly)
		}
		out = append(out, *r)
	}

	fillEconomicPressure(out)
	return out, nil
}

// fillEconomicPressure derives the composite pressure index: a weighted
// blend of annual inflation, the policy rate and FX volatility, min-max
// normalized to a 0-100 scale across the panel. Months missing volatility
// fall back to an inflation plus rate blend with renormalized weights.
func fillEconomicPressure(rows []MonthlyPanelRow) {
	raw := make([]*float64, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.IPCAAnnual == nil || r.SelicRate == nil {
			continue
		}
		if r.CambioVolatility != nil {
			raw[i] = ptr(0.4**r.IPCAAnnual + 0.3**r.SelicRate + 0.3**r.CambioVolatility)
		} else {
			raw[i] = ptr((0.4**r.IPCAAnnual + 0.3**r.SelicRate) / 0.7)
		}
	}

	min, max, any := 0.0, 0.0, false
	for _, v := range raw {
		if v == nil {
			continue
		}
		if !any || *v < min {
			min = *v
		}
		if !any || *v > max {
			max = *v
		}
		any = true
	}
	if !any {
		return
	}
	for i, v := range raw {
		if v == nil {
			continue
		}
		if max == min {
			rows[i].EconomicPressure = ptr(50.0)
			continue
		}
		rows[i].EconomicPressure = ptr((*v - min) / (max - min) * 100)
	}
}

func ptr(v float64) *float64 { return &v }
