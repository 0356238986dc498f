package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// DefaultIBGEBaseURL is the public SIDRA aggregates endpoint.
const DefaultIBGEBaseURL = "https://servicodados.ibge.gov.br"

// IBGEClient collects aggregate series from the IBGE SIDRA API.
type IBGEClient struct {
	baseURL string
	client  *http.Client
}

// NewIBGEClient creates a collector against the given base URL, falling
// back to the public endpoint when empty.
func NewIBGEClient(baseURL string, timeout time.Duration) *IBGEClient {
	if baseURL == "" {
		baseURL = DefaultIBGEBaseURL
	}
	return &IBGEClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *IBGEClient) Source() catalog.Source { return catalog.SourceIBGE }

// sidraAggregate mirrors the /v3/agregados response shape down to the
// period-to-value series map.
type sidraAggregate struct {
	Resultados []struct {
		Series []struct {
			Serie map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}

// Fetch downloads the indicator's SIDRA aggregate over the window. SIDRA
// addresses data by period code rather than date, so the window is
// converted to a YYYYMM code range.
func (c *IBGEClient) Fetch(ctx context.Context, ind catalog.Indicator, w Window) (*timeseries.RawTable, error) {
	if ind.SIDRATable == 0 {
		return nil, apperrors.NewUnsupportedIndicatorError(ind.Key).WithContext("source", "ibge")
	}
	url := fmt.Sprintf("%s/api/v3/agregados/%d/periodos/%s-%s/variaveis/%d?localidades=N1[all]",
		c.baseURL, ind.SIDRATable,
		w.Start.Format("200601"), w.End.Format("200601"),
		ind.SIDRAVariable)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("build ibge request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CollectorFetches.WithLabelValues("ibge", "error").Inc()
		return nil, apperrors.NewNetworkError("ibge request failed", err).WithContext("indicator", ind.Key)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CollectorFetches.WithLabelValues("ibge", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewNetworkError("ibge returned non-200", nil).
			WithContext("indicator", ind.Key).
			WithContext("status", resp.StatusCode).
			WithContext("body", string(body))
	}

	var aggregates []sidraAggregate
	if err := json.NewDecoder(resp.Body).Decode(&aggregates); err != nil {
		metrics.CollectorFetches.WithLabelValues("ibge", "error").Inc()
		return nil, apperrors.NewDataFormatError("decode ibge payload", err).WithContext("indicator", ind.Key)
	}

	table := &timeseries.RawTable{Columns: []string{"date", "value"}}
	for _, agg := range aggregates {
		for _, res := range agg.Resultados {
			for _, series := range res.Series {
				periods := make([]string, 0, len(series.Serie))
				for period := range series.Serie {
					periods = append(periods, period)
				}
				sort.Strings(periods)
				for _, period := range periods {
					date, perr := periodToDate(period, ind.Frequency)
					if perr != nil {
						continue
					}
					table.Rows = append(table.Rows, map[string]string{
						"date":  date.Format("2006-01-02"),
						"value": series.Serie[period],
					})
				}
			}
		}
	}
	if len(table.Rows) == 0 {
		metrics.CollectorFetches.WithLabelValues("ibge", "empty").Inc()
		return nil, apperrors.NewSourceNotFoundError(ind.Key).WithContext("table", ind.SIDRATable)
	}
	metrics.CollectorFetches.WithLabelValues("ibge", "success").Inc()
	return table, nil
}

// periodToDate converts a SIDRA period code to the first day of its
// period. Monthly codes are YYYYMM; quarterly codes are YYYYQQ with the
// quarter in 01-04.
func periodToDate(code string, freq timeseries.Frequency) (time.Time, error) {
	if len(code) != 6 {
		return time.Time{}, fmt.Errorf("bad period code %q", code)
	}
	year, err := strconv.Atoi(code[:4])
	if err != nil {
		return time.Time{}, err
	}
	part, err := strconv.Atoi(code[4:])
	if err != nil {
		return time.Time{}, err
	}
	if freq == timeseries.FrequencyQuarterly {
		if part < 1 || part > 4 {
			return time.Time{}, fmt.Errorf("bad quarter in period code %q", code)
		}
		return time.Date(year, time.Month((part-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	}
	if part < 1 || part > 12 {
		return time.Time{}, fmt.Errorf("bad month in period code %q", code)
	}
	return time.Date(year, time.Month(part), 1, 0, 0, 0, 0, time.UTC), nil
}
