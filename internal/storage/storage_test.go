package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
)

func TestKeys(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	key := TimestampedKey(LayerBronze, "ipca", "csv", at)
	assert.Equal(t, "bronze/economic_indicators/ipca_20240315_103000.csv", key)

	assert.Equal(t, "silver/economic_indicators/selic_", IndicatorPrefix(LayerSilver, "selic"))
	assert.Equal(t, "gold/dashboards/monthly_panel_20240315_103000.parquet", GoldKey("monthly_panel", "parquet", at))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "bronze/economic_indicators/ipca_20240101_000000.csv", []byte("a")))
	require.NoError(t, store.Put(ctx, "bronze/economic_indicators/ipca_20240201_000000.csv", []byte("b")))
	require.NoError(t, store.Put(ctx, "bronze/economic_indicators/selic_20240101_000000.csv", []byte("c")))

	keys, err := store.List(ctx, IndicatorPrefix(LayerBronze, "ipca"))
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.True(t, keys[0] < keys[1], "list is lexicographically sorted")

	latest, err := Latest(ctx, store, IndicatorPrefix(LayerBronze, "ipca"))
	require.NoError(t, err)
	assert.Equal(t, "bronze/economic_indicators/ipca_20240201_000000.csv", latest)

	data, err := store.Get(ctx, latest)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), data)
}

func TestLatestEmptyPrefixIsSoftMiss(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = Latest(context.Background(), store, IndicatorPrefix(LayerSilver, "pib"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceNotFound))
}

func TestGetMissingKey(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "silver/economic_indicators/nope.parquet")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceNotFound))
}

func TestRawTableCodec(t *testing.T) {
	table := &timeseries.RawTable{
		Columns: []string{"data", "valor"},
		Rows: []map[string]string{
			{"data": "01/01/2024", "valor": "0,53"},
			{"data": "01/02/2024", "valor": "0,84"},
		},
	}

	data, err := EncodeRawTable(table)
	require.NoError(t, err)

	got, err := DecodeRawTable(data)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestDecodeRawTableEmpty(t *testing.T) {
	_, err := DecodeRawTable(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
}

func refinedFixture() *timeseries.Series {
	s := &timeseries.Series{
		Meta: timeseries.Metadata{
			Indicator:     "ipca",
			IndicatorName: "IPCA",
			Unit:          "% a.m.",
			Frequency:     timeseries.FrequencyMonthly,
			Source:        "bcb",
			ProcessedAt:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		},
	}
	p1 := timeseries.Point{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 0.53}
	p2 := timeseries.Point{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Value: 0.84}
	p2.SetMetric("monthly_change_pct", 58.49)
	s.Points = []timeseries.Point{p1, p2}
	return s
}

func TestSeriesParquetCodec(t *testing.T) {
	s := refinedFixture()

	data, err := EncodeSeriesParquet(s)
	require.NoError(t, err)

	got, err := DecodeSeriesParquet(data)
	require.NoError(t, err)
	assert.Equal(t, s.Meta.Indicator, got.Meta.Indicator)
	assert.Equal(t, s.Meta.Frequency, got.Meta.Frequency)
	assert.Equal(t, s.Meta.ProcessedAt, got.Meta.ProcessedAt)
	require.Len(t, got.Points, 2)

	_, ok := got.Points[0].Metric("monthly_change_pct")
	assert.False(t, ok, "null cell stays null through parquet")

	v, ok := got.Points[1].Metric("monthly_change_pct")
	require.True(t, ok)
	assert.InDelta(t, 58.49, v, 1e-9)
}

func TestSeriesCSVHasNullCells(t *testing.T) {
	s := refinedFixture()

	data, err := EncodeSeriesCSV(s)
	require.NoError(t, err)

	lines := string(data)
	assert.Contains(t, lines, "date,value,monthly_change_pct")
	assert.Contains(t, lines, "2024-01-01,0.53,\n")
	assert.Contains(t, lines, "2024-02-01,0.84,58.49")
}

func TestSeriesCSVCodecRoundTrip(t *testing.T) {
	s := refinedFixture()

	data, err := EncodeSeriesCSV(s)
	require.NoError(t, err)

	got, err := DecodeSeriesCSV(data)
	require.NoError(t, err)
	require.Len(t, got.Points, 2)

	_, ok := got.Points[0].Metric("monthly_change_pct")
	assert.False(t, ok, "empty cell stays null through csv")

	v, ok := got.Points[1].Metric("monthly_change_pct")
	require.True(t, ok)
	assert.InDelta(t, 58.49, v, 1e-9)
}

func TestDecodeSeriesByExtension(t *testing.T) {
	s := refinedFixture()

	csvData, err := EncodeSeriesCSV(s)
	require.NoError(t, err)
	got, err := DecodeSeries("silver/economic_indicators/ipca_20240315_103000.csv", csvData)
	require.NoError(t, err)
	assert.Len(t, got.Points, 2)

	parquetData, err := EncodeSeriesParquet(s)
	require.NoError(t, err)
	got, err = DecodeSeries("silver/economic_indicators/ipca_20240315_103000.parquet", parquetData)
	require.NoError(t, err)
	assert.Equal(t, "ipca", got.Meta.Indicator)

	_, err = DecodeSeries("silver/economic_indicators/ipca_20240315_103000.parquet", csvData)
	require.Error(t, err, "format follows the key, not the bytes")
}
