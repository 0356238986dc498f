package gold

import (
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// LaborPanelRow is one quarter of the unemployment and GDP panel. GDP
// columns are null for quarters the GDP series does not cover.
type LaborPanelRow struct {
	Quarter               string   `parquet:"quarter"`
	UnemploymentRate      float64  `parquet:"unemployment_rate"`
	QuarterlyChangePP     *float64 `parquet:"quarterly_change_pp,optional"`
	UnemploymentPctChange *float64 `parquet:"unemployment_pct_change,optional"`
	GDPGrowthPct          *float64 `parquet:"gdp_growth_pct,optional"`
	Elasticity            *float64 `parquet:"employment_gdp_elasticity,optional"`
	ElasticityMA          *float64 `parquet:"elasticity_ma_4q,optional"`
}

// BuildLaborPanel left-joins GDP growth onto the unemployment series by
// calendar quarter and derives the employment-to-GDP elasticity. The
// unemployment series drives the panel; GDP is optional.
func BuildLaborPanel(series map[string]*timeseries.Series) ([]LaborPanelRow, error) {
	labor, ok := series["desemprego"]
	if !ok {
		return nil, apperrors.NewTransformationError("labor panel needs desemprego silver data", nil)
	}

	gdpGrowth := make(map[string]float64)
	if gdp, ok := series["pib"]; ok {
		for _, p := range gdp.Points {
			if v, ok := p.Metric("quarterly_change_pct"); ok {
				gdpGrowth[timeseries.QuarterKey(p.Date)] = v
			}
		}
	}

	rows := make([]LaborPanelRow, 0, len(labor.Points))
	for i, p := range labor.Points {
		row := LaborPanelRow{
			Quarter:          timeseries.QuarterKey(p.Date),
			UnemploymentRate: p.Value,
		}
		if chg, ok := p.Metric("quarterly_change_pp"); ok {
			row.QuarterlyChangePP = ptr(chg)
			if i > 0 && labor.Points[i-1].Value != 0 {
				row.UnemploymentPctChange = ptr(chg / labor.Points[i-1].Value * 100)
			}
		}
		if growth, ok := gdpGrowth[row.Quarter]; ok {
			row.GDPGrowthPct = ptr(growth)
			if row.UnemploymentPctChange != nil && growth != 0 {
				// Okun-style elasticity: how much unemployment moves
				// against one percent of GDP growth.
				row.Elasticity = ptr(-*row.UnemploymentPctChange / growth)
			}
		}
		rows = append(rows, row)
	}

	fillElasticityMA(rows, 4)
	return rows, nil
}

// fillElasticityMA writes the trailing mean of the available elasticity
// values over the window, tolerating holes the way a min_periods=1 rolling
// mean does.
func fillElasticityMA(rows []LaborPanelRow, window int) {
	for i := range rows {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		count := 0
		for j := start; j <= i; j++ {
			if rows[j].Elasticity != nil {
				sum += *rows[j].Elasticity
				count++
			}
		}
		if count > 0 {
			rows[i].ElasticityMA = ptr(sum / float64(count))
		}
	}
}
