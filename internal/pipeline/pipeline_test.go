package pipeline

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/config"
	apperrors "github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/errors"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/storage"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/timeseries"
	"github.com/saomarcostecnologia/data-masters-engenharia-dados/internal/transform"
)

// memStore is an in-memory ObjectStore with optional fault injection on
// Put, used to exercise retry behavior.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putFails int
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, apperrors.NewSourceNotFoundError(key)
	}
	return data, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putFails > 0 {
		m.putFails--
		return apperrors.NewStorageError("injected put failure", nil)
	}
	m.objects[key] = data
	return nil
}

func putBronze(t *testing.T, store *memStore, indicator string, table *timeseries.RawTable) {
	t.Helper()
	data, err := storage.EncodeRawTable(table)
	require.NoError(t, err)
	key := storage.TimestampedKey(storage.LayerBronze, indicator, "csv", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.Put(context.Background(), key, data))
}

func ipcaTable() *timeseries.RawTable {
	return &timeseries.RawTable{
		Columns: []string{"data", "valor"},
		Rows: []map[string]string{
			{"data": "01/01/2024", "valor": "0,53"},
			{"data": "01/02/2024", "valor": "0,84"},
			{"data": "01/03/2024", "valor": "0,71"},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Pipeline.RetryDelay = time.Millisecond
	// Lagged metrics leave leading nulls in short fixtures.
	cfg.Validation.NullRatioThreshold = 1.0
	return cfg
}

func newTestOrchestrator(store storage.ObjectStore, cfg *config.Config) *Orchestrator {
	fixed := func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return NewOrchestrator(store, transform.NewRegistry(), cfg, nil, fixed)
}

func TestRunIndicatorsHappyPath(t *testing.T) {
	store := newMemStore()
	putBronze(t, store, "ipca", ipcaTable())

	o := newTestOrchestrator(store, testConfig())
	result := o.RunIndicators(context.Background(), []string{"ipca"})

	st := result.States["ipca"]
	require.NotNil(t, st)
	require.Equal(t, StageDone, st.Stage, "err: %v", st.Err)
	assert.Equal(t, "silver/economic_indicators/ipca_20240315_120000.parquet", st.SilverKey)

	data, err := store.Get(context.Background(), st.SilverKey)
	require.NoError(t, err)
	silver, err := storage.DecodeSeriesParquet(data)
	require.NoError(t, err)
	require.Len(t, silver.Points, 3)
	assert.True(t, silver.HasMetric("monthly_change_pct"))
	assert.True(t, result.Success(false))
	assert.True(t, result.Success(true))
}

func TestMissingBronzeIsSoftSkip(t *testing.T) {
	store := newMemStore()
	putBronze(t, store, "ipca", ipcaTable())

	o := newTestOrchestrator(store, testConfig())
	result := o.RunIndicators(context.Background(), []string{"ipca", "selic"})

	assert.Equal(t, StageDone, result.States["ipca"].Stage)
	assert.Equal(t, StageSkipped, result.States["selic"].Stage)
	assert.True(t, result.Success(false), "one refined indicator keeps the batch alive")
	assert.False(t, result.Success(true), "strict mode counts the skip as failure")
}

func TestUnknownIndicatorFails(t *testing.T) {
	o := newTestOrchestrator(newMemStore(), testConfig())
	result := o.RunIndicators(context.Background(), []string{"bitcoin"})

	st := result.States["bitcoin"]
	require.NotNil(t, st)
	assert.Equal(t, StageFailed, st.Stage)
	assert.True(t, apperrors.IsType(st.Err, apperrors.ErrTypeUnsupportedIndicator))
	assert.False(t, result.Success(false))
}

func TestCorruptBronzeFailsOnlyThatIndicator(t *testing.T) {
	store := newMemStore()
	putBronze(t, store, "ipca", ipcaTable())
	badKey := storage.TimestampedKey(storage.LayerBronze, "selic", "csv", time.Now())
	require.NoError(t, store.Put(context.Background(), badKey, []byte("")))

	o := newTestOrchestrator(store, testConfig())
	result := o.RunIndicators(context.Background(), []string{"ipca", "selic"})

	assert.Equal(t, StageDone, result.States["ipca"].Stage)
	assert.Equal(t, StageFailed, result.States["selic"].Stage)
	assert.True(t, result.Success(false))
}

func TestPersistRetriesTransientStorageErrors(t *testing.T) {
	store := newMemStore()
	putBronze(t, store, "ipca", ipcaTable())
	store.putFails = 2

	cfg := testConfig()
	cfg.Pipeline.RetryAttempts = 3

	o := newTestOrchestrator(store, cfg)
	result := o.RunIndicators(context.Background(), []string{"ipca"})

	assert.Equal(t, StageDone, result.States["ipca"].Stage)
}

func TestPersistGivesUpAfterRetryBudget(t *testing.T) {
	store := newMemStore()
	putBronze(t, store, "ipca", ipcaTable())
	store.putFails = 5

	cfg := testConfig()
	cfg.Pipeline.RetryAttempts = 2

	o := newTestOrchestrator(store, cfg)
	result := o.RunIndicators(context.Background(), []string{"ipca"})

	st := result.States["ipca"]
	assert.Equal(t, StageFailed, st.Stage)
	assert.True(t, apperrors.IsType(st.Err, apperrors.ErrTypeStorage))
}

func TestStrictValidationGates(t *testing.T) {
	store := newMemStore()
	// Duplicate dates survive normalization and trip validation.
	table := &timeseries.RawTable{
		Columns: []string{"data", "valor"},
		Rows: []map[string]string{
			{"data": "01/01/2024", "valor": "0,53"},
			{"data": "01/01/2024", "valor": "0,53"},
		},
	}
	putBronze(t, store, "ipca", table)

	cfg := testConfig()
	cfg.Validation.Strict = true

	o := newTestOrchestrator(store, cfg)
	result := o.RunIndicators(context.Background(), []string{"ipca"})

	st := result.States["ipca"]
	require.Equal(t, StageFailed, st.Stage)
	assert.True(t, apperrors.IsType(st.Err, apperrors.ErrTypeValidation))
}

func TestAdvisoryValidationReportsButPersists(t *testing.T) {
	store := newMemStore()
	table := &timeseries.RawTable{
		Columns: []string{"data", "valor"},
		Rows: []map[string]string{
			{"data": "01/01/2024", "valor": "0,53"},
			{"data": "01/01/2024", "valor": "0,53"},
		},
	}
	putBronze(t, store, "ipca", table)

	o := newTestOrchestrator(store, testConfig())
	result := o.RunIndicators(context.Background(), []string{"ipca"})

	st := result.States["ipca"]
	require.Equal(t, StageDone, st.Stage)
	require.NotNil(t, st.Report)
	assert.False(t, st.Report.OK())
}

func TestValidateSeriesNullRatio(t *testing.T) {
	s := &timeseries.Series{Meta: timeseries.Metadata{Indicator: "ipca"}}
	for i := 0; i < 10; i++ {
		p := timeseries.Point{Date: time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), Value: 1}
		if i >= 5 {
			p.SetMetric("sparse", 1.0)
		}
		s.Points = append(s.Points, p)
	}

	report := validateSeries(s, 0.10)
	assert.False(t, report.OK())
	assert.InDelta(t, 0.5, report.NullRatios["sparse"], 1e-9)

	report = validateSeries(s, 0.60)
	assert.True(t, report.OK())
}
