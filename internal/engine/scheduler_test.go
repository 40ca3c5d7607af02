package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iceymoss/go-task-dropbox/internal/core"
	"github.com/iceymoss/go-task-dropbox/internal/secrets"
	"github.com/iceymoss/go-task-dropbox/internal/tasks"
	pkgerrors "github.com/iceymoss/go-task-dropbox/pkg/errors"
	"github.com/iceymoss/go-task-dropbox/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretEchoTask = "test:secret_echo"

// secretEcho 返回解析到的密钥值，用于观察作用域
type secretEcho struct {
	secret     string
	checkpoint bool
}

func (t *secretEcho) Identifier() string { return secretEchoTask }

func (t *secretEcho) Metadata() core.Metadata {
	cp := t.checkpoint
	return core.Metadata{Name: "echo", Checkpoint: &cp, Tags: core.NewTagSet("test")}
}

func (t *secretEcho) Path() string { return "/echo.txt" }

func (t *secretEcho) Run(ctx context.Context, params map[string]any) ([]byte, error) {
	name := t.secret
	if v, ok := params["secret"].(string); ok {
		name = v
	}
	v, err := secrets.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func init() {
	tasks.Register(secretEchoTask, func(params map[string]any) (core.Task, error) {
		var p struct {
			Secret     string `mapstructure:"secret"`
			Checkpoint bool   `mapstructure:"checkpoint"`
		}
		if err := tasks.DecodeParams(secretEchoTask, params, &p); err != nil {
			return nil, err
		}
		return &secretEcho{secret: p.Secret, checkpoint: p.Checkpoint}, nil
	})
}

type memStorage struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (m *memStorage) Save(_ context.Context, job, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	url := "mem://" + job + filename
	m.saved[url] = data
	return url, nil
}

type memRecorder struct {
	mu   sync.Mutex
	recs []RunRecord
}

func (m *memRecorder) RecordRun(_ context.Context, rec RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func newTestScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	provider := secrets.NewMapProvider(map[string]string{"DROPBOX_ACCESS_TOKEN": "HI", "TEST_SECRET": "BYE"})
	return NewScheduler(append([]Option{WithSecrets(provider)}, opts...)...)
}

func TestManualRunUsesSecretScope(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, WithRecorder(rec))
	require.NoError(t, s.AddJob(JobSpec{
		Name:   "echo",
		Task:   secretEchoTask,
		Params: map[string]any{"secret": "DROPBOX_ACCESS_TOKEN"},
		Source: "API",
	}))

	res, err := s.ManualRun(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bytes)

	res, err = s.ManualRun(context.Background(), "echo", map[string]any{"secret": "TEST_SECRET"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Bytes)

	st, ok := s.Stats.Get("echo")
	require.True(t, ok)
	assert.Equal(t, int64(2), st.RunCount)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Equal(t, "Success", st.LastResult)
	assert.Equal(t, []string{"test"}, st.Tags)

	require.Len(t, rec.recs, 2)
	assert.True(t, rec.recs[0].Success)
	assert.Equal(t, 3, rec.recs[1].Bytes)
}

func TestManualRunMissingSecret(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, WithRecorder(rec))
	require.NoError(t, s.AddJob(JobSpec{
		Name:      "echo",
		Task:      secretEchoTask,
		Params:    map[string]any{"secret": "DROPBOX_ACCESS_TOKEN"},
		Overrides: map[string]any{"secret": "NOPE"},
	}))

	_, err := s.ManualRun(context.Background(), "echo", nil)
	require.Error(t, err)
	assert.True(t, secrets.IsNotFound(err))

	st, _ := s.Stats.Get("echo")
	assert.Equal(t, StatusError, st.Status)
	assert.Contains(t, st.LastResult, "NOPE")

	require.Len(t, rec.recs, 1)
	assert.False(t, rec.recs[0].Success)
	assert.Contains(t, rec.recs[0].Error, "NOPE")

	// 手动覆盖优先于任务配置里的覆盖
	res, err := s.ManualRun(context.Background(), "echo", map[string]any{"secret": "TEST_SECRET"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Bytes)
}

func TestRunWithoutProviderFailsFast(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.AddJob(JobSpec{Name: "echo", Task: secretEchoTask, Params: map[string]any{"secret": "X"}}))

	_, err := s.ManualRun(context.Background(), "echo", nil)
	assert.True(t, secrets.IsNotFound(err))
}

func TestCheckpointPersistsResult(t *testing.T) {
	st := &memStorage{}
	s := newTestScheduler(t, WithStorage(st))
	require.NoError(t, s.AddJob(JobSpec{
		Name:   "kept",
		Task:   secretEchoTask,
		Params: map[string]any{"secret": "DROPBOX_ACCESS_TOKEN", "checkpoint": true},
	}))
	require.NoError(t, s.AddJob(JobSpec{
		Name:   "dropped",
		Task:   secretEchoTask,
		Params: map[string]any{"secret": "DROPBOX_ACCESS_TOKEN"},
	}))

	res, err := s.ManualRun(context.Background(), "kept", nil)
	require.NoError(t, err)
	assert.Equal(t, "mem://kept/echo.txt", res.ResultURL)
	assert.Equal(t, []byte("HI"), st.saved[res.ResultURL])

	res, err = s.ManualRun(context.Background(), "dropped", nil)
	require.NoError(t, err)
	assert.Empty(t, res.ResultURL)
	assert.Len(t, st.saved, 1)
}

func TestAddJobErrors(t *testing.T) {
	s := newTestScheduler(t)

	err := s.AddJob(JobSpec{Name: "x", Task: "test:unknown"})
	assert.Error(t, err)

	err = s.AddJob(JobSpec{Name: "x", Task: secretEchoTask, Params: map[string]any{"bogus": 1}})
	var unknown *core.UnknownArgumentError
	assert.True(t, errors.As(err, &unknown))

	err = s.AddJob(JobSpec{Name: "x", Task: secretEchoTask, Cron: "not a cron"})
	assert.Error(t, err)

	require.NoError(t, s.AddJob(JobSpec{Name: "y", Task: secretEchoTask, Cron: "@every 1h"}))
	assert.Error(t, s.AddJob(JobSpec{Name: "y", Task: secretEchoTask}))

	_, err = s.ManualRun(context.Background(), "missing", nil)
	assert.Equal(t, xerr.ErrJobNotFound, pkgerrors.FromError(err).Code)
}

func TestCronRunsJob(t *testing.T) {
	rec := &memRecorder{}
	s := newTestScheduler(t, WithRecorder(rec), WithRunTimeout(time.Second))
	require.NoError(t, s.AddJob(JobSpec{
		Name:   "tick",
		Task:   secretEchoTask,
		Cron:   "@every 1s",
		Params: map[string]any{"secret": "DROPBOX_ACCESS_TOKEN"},
	}))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.recs) > 0
	}, 5*time.Second, 50*time.Millisecond)

	st, _ := s.Stats.Get("tick")
	assert.NotEmpty(t, st.NextRunTime)
}

func TestMergeParams(t *testing.T) {
	assert.Nil(t, mergeParams(nil, nil))

	base := map[string]any{"a": 1, "b": 2}
	merged := mergeParams(base, map[string]any{"b": 3})
	assert.Equal(t, map[string]any{"a": 1, "b": 3}, merged)
	assert.Equal(t, 2, base["b"], "base 不应被修改")
}
