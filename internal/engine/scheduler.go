package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/iceymoss/go-task-dropbox/internal/core"
	"github.com/iceymoss/go-task-dropbox/internal/secrets"
	"github.com/iceymoss/go-task-dropbox/internal/tasks"
	"github.com/iceymoss/go-task-dropbox/pkg/errors"
	"github.com/iceymoss/go-task-dropbox/pkg/logger"
	"github.com/iceymoss/go-task-dropbox/pkg/storage"
	"github.com/iceymoss/go-task-dropbox/pkg/xerr"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	StatusIdle    = "Idle"
	StatusRunning = "Running"
	StatusError   = "Error"

	defaultRunTimeout = 65 * time.Minute
)

// JobSpec 一个调度任务的定义
type JobSpec struct {
	Name      string         // 唯一任务名
	Task      string         // 注册的任务类型
	Cron      string         // 为空表示只能手动触发
	Params    map[string]any // 构造参数
	Overrides map[string]any // 每次运行的默认覆盖参数
	Source    string
}

// RunRecord 一次运行的记录
type RunRecord struct {
	Job       string
	Task      string
	Success   bool
	Error     string
	Bytes     int
	ResultURL string
	Start     time.Time
	End       time.Time
}

// RunRecorder 持久化运行记录
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// RunResult 手动触发的返回
type RunResult struct {
	Bytes     int    `json:"bytes"`
	ResultURL string `json:"result_url,omitempty"`
}

type job struct {
	spec    JobSpec
	task    core.Task
	entryID cron.EntryID // 0 表示未加入 cron
}

type Option func(*Scheduler)

// WithSecrets 每次运行都在该 Provider 的作用域中执行
func WithSecrets(p secrets.Provider) Option {
	return func(s *Scheduler) { s.secrets = p }
}

// WithStorage checkpoint 打开的任务结果写入该存储
func WithStorage(st storage.ResultStorage) Option {
	return func(s *Scheduler) { s.storage = st }
}

func WithRecorder(r RunRecorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

type Scheduler struct {
	cron       *cron.Cron
	Stats      *StatManager
	registered map[string]*job
	secrets    secrets.Provider
	storage    storage.ResultStorage
	recorder   RunRecorder
	runTimeout time.Duration
	log        *zap.Logger
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		Stats:      NewStatManager(),
		registered: make(map[string]*job),
		runTimeout: defaultRunTimeout,
		log:        logger.Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob 构造任务并加入调度，须在 Start 之前调用
func (s *Scheduler) AddJob(spec JobSpec) error {
	if _, ok := s.registered[spec.Name]; ok {
		return fmt.Errorf("job %q already registered", spec.Name)
	}

	// 1. 构造任务实例（只做结构校验）
	taskInstance, err := tasks.Build(spec.Task, spec.Params)
	if err != nil {
		return err
	}
	j := &job{spec: spec, task: taskInstance}

	// 2. 加入 Cron
	if spec.Cron != "" {
		entryID, err := s.cron.AddFunc(spec.Cron, func() {
			_, _ = s.runJob(context.Background(), j, nil)
		})
		if err != nil {
			return fmt.Errorf("job %q: %w", spec.Name, err)
		}
		j.entryID = entryID
	}

	// 3. 初始化状态
	s.Stats.Set(spec.Name, &JobStats{
		Name:        spec.Name,
		Task:        spec.Task,
		CronExpr:    spec.Cron,
		Status:      StatusIdle,
		NextRunTime: formatTime(s.nextRun(j)),
		LastResult:  "Pending",
		Tags:        taskInstance.Metadata().Tags.Sorted(),
		Source:      spec.Source,
	})

	s.registered[spec.Name] = j
	return nil
}

// ManualRun 手动触发并等待结果，overrides 覆盖任务配置中的默认覆盖参数
func (s *Scheduler) ManualRun(ctx context.Context, name string, overrides map[string]any) (*RunResult, error) {
	j, ok := s.registered[name]
	if !ok {
		return nil, errors.New(xerr.ErrJobNotFound, fmt.Sprintf("job %q not found", name))
	}
	return s.runJob(ctx, j, overrides)
}

// runJob 执行并记录状态
func (s *Scheduler) runJob(ctx context.Context, j *job, overrides map[string]any) (*RunResult, error) {
	name := j.spec.Name
	start := time.Now()

	s.Stats.Update(name, func(st *JobStats) {
		st.Status = StatusRunning
		st.LastRunTime = formatTime(start)
		st.RunCount++
	})
	s.log.Info("job starting", zap.String("job", name), zap.String("task", j.spec.Task))

	// 执行 (带超时控制)
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	if s.secrets != nil {
		ctx = secrets.WithProvider(ctx, s.secrets)
	}

	data, err := j.task.Run(ctx, mergeParams(j.spec.Overrides, overrides))

	res := &RunResult{Bytes: len(data)}
	if err == nil && s.storage != nil && j.task.Metadata().CheckpointEnabled() {
		res.ResultURL, err = s.storage.Save(ctx, name, resultFilename(j), data)
	}

	end := time.Now()
	s.Stats.Update(name, func(st *JobStats) {
		if err != nil {
			st.LastResult = fmt.Sprintf("Error: %v", err)
			st.Status = StatusError
		} else {
			st.LastResult = "Success"
			st.Status = StatusIdle
			st.LastBytes = res.Bytes
			st.ResultURL = res.ResultURL
		}
		if next := s.nextRun(j); !next.IsZero() {
			st.NextRunTime = formatTime(next)
		}
	})

	if err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
	} else {
		s.log.Info("job finished", zap.String("job", name),
			zap.Int("bytes", res.Bytes), zap.Duration("elapsed", end.Sub(start)))
	}

	if s.recorder != nil {
		rec := RunRecord{
			Job:       name,
			Task:      j.spec.Task,
			Success:   err == nil,
			Bytes:     res.Bytes,
			ResultURL: res.ResultURL,
			Start:     start,
			End:       end,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		// 记录失败不影响任务结果
		if recErr := s.recorder.RecordRun(context.Background(), rec); recErr != nil {
			s.log.Warn("record run failed", zap.String("job", name), zap.Error(recErr))
		}
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Scheduler) nextRun(j *job) time.Time {
	if j.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(j.entryID).Next
}

// mergeParams 后者覆盖前者，返回新 map
func mergeParams(base, over map[string]any) map[string]any {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	merged := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// resultFilename 任务若暴露下载路径则以其命名结果文件
func resultFilename(j *job) string {
	if p, ok := j.task.(interface{ Path() string }); ok && p.Path() != "" {
		return p.Path()
	}
	return j.spec.Task
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 等待正在执行的 cron 任务结束
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
