// Package catalog declares the macroeconomic indicators the pipeline knows
// about. Every indicator is tagged with a Kind, and the transform layer
// binds each Kind to one refinement policy, so adding an indicator here is
// enough to route it through collection, refinement and aggregation.
package catalog

import (
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Kind partitions indicators by the shape of their refinement: the metrics
// computed for a price index differ from those of a policy rate or an
// exchange rate.
type Kind string

const (
	KindPriceIndex Kind = "price_index"
	KindPolicyRate Kind = "policy_rate"
	KindFX         Kind = "fx"
	KindLabor      Kind = "labor"
	KindGDP        Kind = "gdp"
)

// Source names the upstream API an indicator is collected from.
type Source string

const (
	SourceBCB  Source = "bcb"
	SourceIBGE Source = "ibge"
)

// Indicator is one catalog entry.
type Indicator struct {
	// Key is the stable identifier used in storage paths and logs.
	Key  string
	Name string
	Unit string
	Kind Kind
	// Frequency is the native cadence of the source series.
	Frequency timeseries.Frequency
	Source    Source
	// ValueColumn names the raw column holding the observation value.
	// Empty means the normalizer resolves it heuristically.
	ValueColumn string
	// BCBSeries is the SGS series code for SourceBCB indicators.
	BCBSeries int
	// SIDRATable and SIDRAVariable address the IBGE aggregate for
	// SourceIBGE indicators.
	SIDRATable    int
	SIDRAVariable int
}

var indicators = []Indicator{
	{
		Key:       "ipca",
		Name:      "IPCA - Índice de Preços ao Consumidor Amplo",
		Unit:      "% a.m.",
		Kind:      KindPriceIndex,
		Frequency: timeseries.FrequencyMonthly,
		Source:    SourceBCB,
		BCBSeries: 433,
	},
	{
		Key:       "selic",
		Name:      "Taxa SELIC",
		Unit:      "% a.a.",
		Kind:      KindPolicyRate,
		Frequency: timeseries.FrequencyDaily,
		Source:    SourceBCB,
		BCBSeries: 11,
	},
	{
		Key:       "cambio",
		Name:      "Taxa de Câmbio USD/BRL",
		Unit:      "BRL",
		Kind:      KindFX,
		Frequency: timeseries.FrequencyDaily,
		Source:    SourceBCB,
		BCBSeries: 1,
	},
	{
		Key:       "pib",
		Name:      "PIB Trimestral",
		Unit:      "R$ milhões",
		Kind:      KindGDP,
		Frequency: timeseries.FrequencyQuarterly,
		Source:    SourceBCB,
		BCBSeries: 4380,
	},
	{
		Key:       "desemprego",
		Name:      "Taxa de Desocupação (PNAD Contínua)",
		Unit:      "%",
		Kind:      KindLabor,
		Frequency: timeseries.FrequencyQuarterly,
		Source:    SourceBCB,
		BCBSeries: 24369,
	},
	{
		Key:           "ipca15",
		Name:          "IPCA-15",
		Unit:          "% a.m.",
		Kind:          KindPriceIndex,
		Frequency:     timeseries.FrequencyMonthly,
		Source:        SourceIBGE,
		SIDRATable:    7062,
		SIDRAVariable: 355,
	},
	{
		Key:           "inpc",
		Name:          "INPC - Índice Nacional de Preços ao Consumidor",
		Unit:          "% a.m.",
		Kind:          KindPriceIndex,
		Frequency:     timeseries.FrequencyMonthly,
		Source:        SourceIBGE,
		SIDRATable:    7063,
		SIDRAVariable: 44,
	},
}

// All returns every catalog entry in declaration order.
func All() []Indicator {
	out := make([]Indicator, len(indicators))
	copy(out, indicators)
	return out
}

// Lookup finds a catalog entry by key.
func Lookup(key string) (Indicator, bool) {
	for _, ind := range indicators {
		if ind.Key == key {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Keys returns every indicator key in declaration order.
func Keys() []string {
	keys := make([]string, len(indicators))
	for i, ind := range indicators {
		keys[i] = ind.Key
	}
	return keys
}
