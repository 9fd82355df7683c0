package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/dulpromax/catalog-api/jobs"
)

type stubClient struct {
	tasks  []*asynq.Task
	closed bool
}

func (s *stubClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault, Type: task.Type()}, nil
}

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func (s stubInspector) ListScheduledTasks(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return nil, s.err
}

func (s stubInspector) Close() error { return nil }

func TestTriggerReprice(t *testing.T) {
	client := &stubClient{}
	c := NewJobsCLIWith(client, stubInspector{})
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC) }

	info, err := c.Trigger(context.Background(), jobs.TaskRepriceCatalog, TriggerOptions{ProductID: "p1"})
	require.NoError(t, err)
	require.Equal(t, jobs.TaskRepriceCatalog, info.Type)
	require.Len(t, client.tasks, 1)

	var payload jobs.RepricePayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	require.Equal(t, "p1", payload.ProductID)
	require.Equal(t, 2026, payload.ScheduledFor.Year())
}

func TestTriggerUnsupported(t *testing.T) {
	client := &stubClient{}
	_, err := NewJobsCLIWith(client, stubInspector{}).Trigger(context.Background(), "mail:send", TriggerOptions{})
	require.ErrorContains(t, err, "unsupported job")
	require.Empty(t, client.tasks)
}

func TestTriggerCommandOutput(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	code := NewJobsCLIWith(&stubClient{}, stubInspector{}).TriggerCommand(context.Background(), jobs.TaskWarmCatalog, TriggerOptions{Pages: 2}, stdout, stderr)
	require.Equal(t, 0, code)
	require.Equal(t, "enqueued catalog:warm id=task-1 queue=default\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestStatsCommand(t *testing.T) {
	inspector := stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 3, Retry: 1}}
	c := NewJobsCLIWith(&stubClient{}, inspector)

	stdout := new(bytes.Buffer)
	require.Equal(t, 0, c.StatsCommand(context.Background(), StatsOptions{JSONOutput: true, Stdout: stdout}))
	require.JSONEq(t, `{"queue":"default","pending":3,"active":0,"scheduled":0,"retry":1,"archived":0}`, stdout.String())

	stdout.Reset()
	require.Equal(t, 0, c.StatsCommand(context.Background(), StatsOptions{Stdout: stdout}))
	require.Equal(t, "queue default: pending=3 active=0 scheduled=0 retry=1 archived=0\n", stdout.String())

	stderr := new(bytes.Buffer)
	failing := NewJobsCLIWith(&stubClient{}, stubInspector{err: errors.New("redis down")})
	require.Equal(t, 1, failing.StatsCommand(context.Background(), StatsOptions{Stdout: stdout, Stderr: stderr}))
	require.Contains(t, stderr.String(), "redis down")
}

func TestCloseReleasesClient(t *testing.T) {
	client := &stubClient{}
	require.NoError(t, NewJobsCLIWith(client, stubInspector{}).Close())
	require.True(t, client.closed)
}
