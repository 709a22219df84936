package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leadscout/internal/app"
	"leadscout/internal/domain"
)

type stubSource struct {
	store domain.Store
	res   domain.SearchResult
	panic bool
}

func (s *stubSource) Store() domain.Store { return s.store }

func (s *stubSource) Search(ctx context.Context, keywords []string, th domain.Thresholds) domain.SearchResult {
	if s.panic {
		panic("kaputt")
	}
	return s.res
}

type mockSink struct{ mock.Mock }

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) Export(ctx context.Context, leads []domain.Lead, a domain.Artifact) error {
	return m.Called(leads, a).Error(0)
}

type warningSink struct {
	mockSink
	got []domain.Warning
}

func (w *warningSink) RecordWarnings(ctx context.Context, runID string, ws []domain.Warning) error {
	w.got = append(w.got, ws...)
	return nil
}

func scoutCfg(dir string) app.ScoutConfig {
	return app.ScoutConfig{
		Market:           "de",
		Keywords:         []string{"fitness"},
		Thresholds:       domain.Thresholds{MinRating: 3.5, MinReviews: 100},
		MaxUpdateAgeDays: 365,
		OutputDir:        dir,
	}
}

func TestScout_Run_WritesCSVAndFeedsSinks(t *testing.T) {
	dir := t.TempDir()
	ios := &stubSource{store: domain.StoreIOS, res: domain.SearchResult{
		Leads: []domain.Lead{
			lead(domain.StoreIOS, "com.fit", 3.0, 150, daysAgo(10)),
			lead(domain.StoreIOS, "com.fit", 3.4, 999, daysAgo(1)), // second keyword hit, dropped
			lead(domain.StoreIOS, "com.old", 1.0, 500, daysAgo(400)),
		},
		Warnings: []domain.Warning{{Store: domain.StoreIOS, Stage: domain.StageSearch, Keyword: "x", Message: "boom"}},
	}}
	android := &stubSource{store: domain.StoreAndroid, res: domain.SearchResult{
		Leads: []domain.Lead{lead(domain.StoreAndroid, "com.fit", 2.0, 300, daysAgo(3))},
	}}

	failing := &mockSink{}
	failing.On("Export", mock.Anything, mock.Anything).Return(errBoom).Once()
	ws := &warningSink{}
	ws.On("Export", mock.Anything, mock.Anything).Return(nil).Once()

	svc := app.NewScoutService(scoutCfg(dir), []domain.LeadSource{ios, android}, []domain.LeadSink{failing, ws}).
		WithClock(func() time.Time { return fixedNow })

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Leads, 2)
	assert.Equal(t, domain.StoreAndroid, rep.Leads[0].SourceStore)
	assert.Equal(t, 3.0, rep.Leads[1].Rating)
	assert.Equal(t, app.PipelineStats{Input: 4, Stale: 1, Duplicates: 1, Output: 2}, rep.Stats)
	assert.NotEmpty(t, rep.RunID)

	assert.Equal(t, filepath.Join(dir, "leads_de_lowrating_20261017_120000.csv"), rep.CSVPath)
	b, err := os.ReadFile(rep.CSVPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(string(b), "\n"), "\n"), 3)

	failing.AssertExpectations(t)
	ws.AssertExpectations(t)
	art := ws.Calls[0].Arguments.Get(1).(domain.Artifact)
	assert.Equal(t, rep.RunID, art.RunID)
	assert.Equal(t, rep.CSVPath, art.Path)
	assert.Equal(t, rep.Warnings, ws.got)
}

func TestScout_Run_OneSourceCrashes(t *testing.T) {
	ios := &stubSource{store: domain.StoreIOS, panic: true}
	android := &stubSource{store: domain.StoreAndroid, res: domain.SearchResult{
		Leads: []domain.Lead{lead(domain.StoreAndroid, "com.a", 2.0, 300, daysAgo(3))},
	}}

	rep, err := app.NewScoutService(scoutCfg(t.TempDir()), []domain.LeadSource{ios, android}, nil).
		WithClock(func() time.Time { return fixedNow }).
		Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Leads, 1)
	assert.Equal(t, "com.a", rep.Leads[0].AppIdentifier)
	require.Len(t, rep.Warnings, 1)
	assert.Equal(t, domain.StoreIOS, rep.Warnings[0].Store)
	assert.Contains(t, rep.Warnings[0].Message, "kaputt")
}

func TestScout_Run_SourcesRunConcurrently(t *testing.T) {
	// each source blocks until the other has started; a sequential run would hang
	gateA, gateB := make(chan struct{}), make(chan struct{})
	a := &blockingSource{store: domain.StoreIOS, mine: gateA, other: gateB}
	b := &blockingSource{store: domain.StoreAndroid, mine: gateB, other: gateA}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := app.NewScoutService(scoutCfg(t.TempDir()), []domain.LeadSource{a, b}, nil).
			WithClock(func() time.Time { return fixedNow }).
			Run(context.Background())
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sources did not run concurrently")
	}
}

type blockingSource struct {
	store       domain.Store
	mine, other chan struct{}
}

func (s *blockingSource) Store() domain.Store { return s.store }

func (s *blockingSource) Search(ctx context.Context, keywords []string, th domain.Thresholds) domain.SearchResult {
	close(s.mine)
	<-s.other
	return domain.SearchResult{}
}

func TestScout_Run_NoLeadsStillWritesHeader(t *testing.T) {
	cfg := scoutCfg(t.TempDir())
	cfg.Keywords = nil

	rep, err := app.NewScoutService(cfg, []domain.LeadSource{&stubSource{store: domain.StoreIOS}}, nil).
		WithClock(func() time.Time { return fixedNow }).
		Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rep.Leads)
	b, err := os.ReadFile(rep.CSVPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), `"source_store"`))
}

func TestScout_Run_CSVFailureIsFatal(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	sink := &mockSink{}
	rep, err := app.NewScoutService(scoutCfg(file), nil, []domain.LeadSink{sink}).
		WithClock(func() time.Time { return fixedNow }).
		Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "export csv")
	assert.Empty(t, rep.CSVPath)
	sink.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}
