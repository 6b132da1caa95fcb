package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nba_stats/ingestion/internal/pipeline"
	"nba_stats/ingestion/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	healthErr error
	counts    repository.Counts
	countsErr error
}

func (f *fakeStore) Health(ctx context.Context) error { return f.healthErr }

func (f *fakeStore) Counts(ctx context.Context) (repository.Counts, error) {
	return f.counts, f.countsErr
}

type fakePinger struct {
	err error
}

func (f *fakePinger) HealthCheck(ctx context.Context) error { return f.err }

type fakeTrigger struct {
	err   error
	calls int
}

func (f *fakeTrigger) Trigger() error {
	f.calls++
	return f.err
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	db := &fakeStore{}
	router := newRouter(db, nil, &pipeline.Status{}, &fakeTrigger{})

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/health").Code)

	db.healthErr = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, router, http.MethodGet, "/health").Code)
}

func TestRouter_HealthChecksCache(t *testing.T) {
	redis := &fakePinger{}
	router := newRouter(&fakeStore{}, redis, &pipeline.Status{}, &fakeTrigger{})

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/health").Code)

	redis.err = errors.New("i/o timeout")
	rec := serve(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
}

func TestRouter_Status(t *testing.T) {
	db := &fakeStore{counts: repository.Counts{Teams: 30, Players: 500, Games: 1200, BoxScores: 25000}}
	status := &pipeline.Status{}
	require.True(t, status.TryBegin())

	rec := serve(t, newRouter(db, nil, status, &fakeTrigger{}), http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["is_running"])
	assert.Equal(t, false, body["needs_sync"])
	assert.Equal(t, float64(30), body["counts"].(map[string]any)["teams"])
}

func TestRouter_StatusNeedsSync(t *testing.T) {
	rec := serve(t, newRouter(&fakeStore{}, nil, &pipeline.Status{}, &fakeTrigger{}), http.MethodGet, "/status")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["needs_sync"])
	assert.Equal(t, false, body["is_running"])
}

func TestRouter_Sync(t *testing.T) {
	trig := &fakeTrigger{}
	router := newRouter(&fakeStore{}, nil, &pipeline.Status{}, trig)

	assert.Equal(t, http.StatusAccepted, serve(t, router, http.MethodPost, "/sync").Code)

	trig.err = pipeline.ErrSyncInProgress
	assert.Equal(t, http.StatusConflict, serve(t, router, http.MethodPost, "/sync").Code)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, router, http.MethodGet, "/sync").Code)
	assert.Equal(t, 2, trig.calls)
}

func TestRouter_Metrics(t *testing.T) {
	rec := serve(t, newRouter(&fakeStore{}, nil, &pipeline.Status{}, &fakeTrigger{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
