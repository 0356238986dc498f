// Package collect ingests raw indicator data from the BCB and IBGE public
// APIs into the bronze layer. Collectors return wire-shaped tables;
// cleaning belongs to the refinement pipeline.
package collect

import (
	"context"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// Window is the collection date range, inclusive on both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowEndingNow builds a window covering the trailing number of days.
func WindowEndingNow(days int, now func() time.Time) Window {
	end := now().UTC()
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Collector fetches the raw observations of one indicator from its source
// API.
type Collector interface {
	Source() catalog.Source
	Fetch(ctx context.Context, ind catalog.Indicator, w Window) (*timeseries.RawTable, error)
}
