package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/dulpromax/catalog-api/internal/jobs"
)

type stubProducts struct {
	ids []string
	err error
}

func (s stubProducts) ProductsWithPacks(context.Context) ([]string, error) {
	return s.ids, s.err
}

type stubSyncer struct {
	prices map[string]float64
	fail   map[string]bool
	seen   []string
}

func (s *stubSyncer) Sync(_ context.Context, productID string) (float64, bool, error) {
	s.seen = append(s.seen, productID)
	if s.fail[productID] {
		return 0, false, errors.New("store unavailable")
	}
	price, ok := s.prices[productID]
	return price, ok, nil
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) {
	c.invalidations++
}

func TestRepriceContinuesPastFailures(t *testing.T) {
	syncer := &stubSyncer{
		prices: map[string]float64{"p1": 9.5, "p3": 12},
		fail:   map[string]bool{"p2": true},
	}
	cache := &countingCache{}
	job := NewRepriceJob(stubProducts{ids: []string{"p1", "p2", "p3", "p4"}}, syncer, cache, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	result, err := job.Run(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, []string{"p1", "p2", "p3", "p4"}, syncer.seen)
	require.Equal(t, RepriceResult{Updated: 2, Unchanged: 1, Failed: 1}, result)
	require.Equal(t, 1, cache.invalidations)
}

func TestRepriceSingleProduct(t *testing.T) {
	syncer := &stubSyncer{prices: map[string]float64{"p7": 4}}
	job := NewRepriceJob(stubProducts{err: errors.New("must not be called")}, syncer, nil, nil, nil)

	result, err := job.Run(context.Background(), "p7")
	require.NoError(t, err)
	require.Equal(t, []string{"p7"}, syncer.seen)
	require.Equal(t, 1, result.Updated)
}

func TestRepriceNothingUpdatedKeepsCache(t *testing.T) {
	cache := &countingCache{}
	job := NewRepriceJob(stubProducts{ids: []string{"p1"}}, &stubSyncer{}, cache, nil, nil)

	result, err := job.Run(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Unchanged)
	require.Zero(t, cache.invalidations)
}

func TestRepriceListFailure(t *testing.T) {
	syncer := &stubSyncer{}
	job := NewRepriceJob(stubProducts{err: errors.New("db down")}, syncer, nil, nil, nil)

	_, err := job.Run(context.Background(), "")
	require.ErrorContains(t, err, "db down")
	require.Empty(t, syncer.seen)
}

func TestRepriceHandleTask(t *testing.T) {
	syncer := &stubSyncer{prices: map[string]float64{"p1": 1}}
	job := NewRepriceJob(stubProducts{}, syncer, nil, nil, nil)

	task, err := NewRepriceTask("p1", fixedTime)
	require.NoError(t, err)
	require.Equal(t, TaskRepriceCatalog, task.Type())

	var payload RepricePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "p1", payload.ProductID)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"p1"}, syncer.seen)

	err = job.Handle(context.Background(), asynq.NewTask(TaskRepriceCatalog, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRepriceHandleUnconfigured(t *testing.T) {
	var job *RepriceJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskRepriceCatalog, nil)))
}
