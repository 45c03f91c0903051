package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ValueZone/internal/collector"
	"ValueZone/internal/config"
	"ValueZone/internal/recorder"
)

func TestNewFetcher(t *testing.T) {
	cfg := config.Defaults()
	f, err := newFetcher(cfg)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", f.Name())

	cfg.DataSource.Provider = "mock"
	f, err = newFetcher(cfg)
	require.NoError(t, err)
	assert.IsType(t, &collector.MockFetcher{}, f)

	cfg.DataSource.Provider = "vstrader"
	cfg.DataSource.BaseURL = "http://localhost:1"
	f, err = newFetcher(cfg)
	require.NoError(t, err)
	assert.Equal(t, "vstrader", f.Name())

	cfg.DataSource.Provider = "bloomberg"
	_, err = newFetcher(cfg)
	assert.Error(t, err)
}

func TestNewRecorder(t *testing.T) {
	cfg := config.Defaults()
	assert.IsType(t, &recorder.NoopRecorder{}, newRecorder(context.Background(), cfg))

	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "vz.db")
	rec := newRecorder(context.Background(), cfg)
	defer rec.Close()
	assert.IsType(t, &recorder.SQLiteRecorder{}, rec)
}

func TestApp_MockPipeline(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataSource.Provider = "mock"
	cfg.Watch.StateFile = ""
	cfg.Watch.Symbols = []string{"SPY", "QQQ"}

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.service.Analyze(context.Background(), "spy")
	require.NoError(t, err)
	assert.Equal(t, "SPY", res.Symbol)
	assert.True(t, res.Assignment.Zone.Valid())

	sched, err := a.scheduler(context.Background())
	require.NoError(t, err)
	results := sched.RunNow(context.Background())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestWriteChart(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataSource.Provider = "mock"
	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.service.Analyze(context.Background(), "GLD")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "gld.svg")
	require.NoError(t, writeChart(path, res))
	assert.FileExists(t, path)
}
