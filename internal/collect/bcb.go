package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/catalog"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/metrics"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

// DefaultBCBBaseURL is the public SGS endpoint of the Brazilian central
// bank.
const DefaultBCBBaseURL = "https://api.bcb.gov.br"

// BCBClient collects SGS time series from the Banco Central do Brasil API.
type BCBClient struct {
	baseURL string
	client  *http.Client
}

// NewBCBClient creates a collector against the given base URL, falling
// back to the public endpoint when empty.
func NewBCBClient(baseURL string, timeout time.Duration) *BCBClient {
	if baseURL == "" {
		baseURL = DefaultBCBBaseURL
	}
	return &BCBClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *BCBClient) Source() catalog.Source { return catalog.SourceBCB }

// sgsObservation is one row of the SGS JSON payload. Values arrive as
// strings with comma decimals.
type sgsObservation struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// Fetch downloads the indicator's SGS series over the window. The raw
// table keeps the wire column names so bronze stays source-faithful.
func (c *BCBClient) Fetch(ctx context.Context, ind catalog.Indicator, w Window) (*timeseries.RawTable, error) {
	if ind.BCBSeries == 0 {
		return nil, apperrors.NewUnsupportedIndicatorError(ind.Key).WithContext("source", "bcb")
	}
	url := fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados?formato=json&dataInicial=%s&dataFinal=%s",
		c.baseURL, ind.BCBSeries,
		w.Start.Format("02/01/2006"), w.End.Format("02/01/2006"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewNetworkError("build bcb request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CollectorFetches.WithLabelValues("bcb", "error").Inc()
		return nil, apperrors.NewNetworkError("bcb request failed", err).WithContext("indicator", ind.Key)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CollectorFetches.WithLabelValues("bcb", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewNetworkError("bcb returned non-200", nil).
			WithContext("indicator", ind.Key).
			WithContext("status", resp.StatusCode).
			WithContext("body", string(body))
	}

	var observations []sgsObservation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		metrics.CollectorFetches.WithLabelValues("bcb", "error").Inc()
		return nil, apperrors.NewDataFormatError("decode bcb payload", err).WithContext("indicator", ind.Key)
	}
	if len(observations) == 0 {
		metrics.CollectorFetches.WithLabelValues("bcb", "empty").Inc()
		return nil, apperrors.NewSourceNotFoundError(ind.Key).WithContext("window_start", w.Start.Format("2006-01-02"))
	}

	table := &timeseries.RawTable{Columns: []string{"data", "valor"}}
	for _, obs := range observations {
		table.Rows = append(table.Rows, map[string]string{
			"data":  obs.Data,
			"valor": obs.Valor,
		})
	}
	metrics.CollectorFetches.WithLabelValues("bcb", "success").Inc()
	return table, nil
}
