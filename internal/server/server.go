package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iceymoss/go-task-dropbox/internal/conf"
	"github.com/iceymoss/go-task-dropbox/internal/engine"
	"github.com/iceymoss/go-task-dropbox/internal/repo"
	"github.com/iceymoss/go-task-dropbox/internal/tasks"
	xerrors "github.com/iceymoss/go-task-dropbox/pkg/errors"
	"github.com/iceymoss/go-task-dropbox/pkg/logger"
	"github.com/iceymoss/go-task-dropbox/pkg/xerr"

	"go.uber.org/zap"
)

const (
	SourceYAML = "YAML"

	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunHistory 运行记录查询，由 repo.RunLogRepo 实现
type RunHistory interface {
	Recent(ctx context.Context, job string, limit int) ([]*repo.TaskRunLog, error)
}

type Option func(*Server)

// WithRunHistory 开启 GET /api/tasks/:name/runs
func WithRunHistory(h RunHistory) Option {
	return func(s *Server) { s.history = h }
}

type Server struct {
	engine    *gin.Engine
	scheduler *engine.Scheduler
	history   RunHistory
}

// runRequest POST /api/tasks/:name/run 的请求体，可为空
type runRequest struct {
	Overrides map[string]any `json:"overrides"`
}

// NewServer 注册所有配置型任务并挂载 API
func NewServer(cfg *conf.Config, scheduler *engine.Scheduler, opts ...Option) *Server {
	s := &Server{scheduler: scheduler}
	for _, opt := range opts {
		opt(s)
	}

	for _, job := range cfg.Jobs {
		if !job.Enable {
			continue
		}
		err := scheduler.AddJob(engine.JobSpec{
			Name:      job.Name,
			Task:      job.Task,
			Cron:      job.Cron,
			Params:    job.Params,
			Overrides: job.Overrides,
			Source:    SourceYAML,
		})
		if err != nil {
			logger.Warn("failed to schedule job", zap.String("job", job.Name), zap.Error(err))
		} else {
			logger.Info("job scheduled", zap.String("job", job.Name), zap.String("cron", job.Cron))
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/tasks", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": scheduler.Stats.GetAll()})
		})

		api.GET("/task-types", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": tasks.Names()})
		})

		api.POST("/tasks/:name/run", func(c *gin.Context) {
			var req runRequest
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				renderError(c, xerrors.Wrap(xerr.ErrInvalidJSON, err))
				return
			}

			res, err := scheduler.ManualRun(c.Request.Context(), c.Param("name"), req.Overrides)
			if err != nil {
				renderError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"data": res})
		})

		api.GET("/tasks/:name/runs", s.listRuns)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": xerr.ErrNotFound, "error": "API not found"})
	})

	s.engine = router
	return s
}

// listRuns 查询某个任务最近的运行记录，?limit= 默认 20，最大 100
func (s *Server) listRuns(c *gin.Context) {
	if s.history == nil {
		renderError(c, xerrors.New(xerr.ErrResourceNotFound, "run history not configured"))
		return
	}

	name := c.Param("name")
	if _, ok := s.scheduler.Stats.Get(name); !ok {
		renderError(c, xerrors.New(xerr.ErrJobNotFound, fmt.Sprintf("job %q not found", name)))
		return
	}

	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			renderError(c, xerrors.New(xerr.ErrBadRequest, fmt.Sprintf("invalid limit %q", raw)))
			return
		}
		limit = min(n, maxRunsLimit)
	}

	list, err := s.history.Recent(c.Request.Context(), name, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func renderError(c *gin.Context, err error) {
	cm := xerrors.FromError(err)
	c.JSON(cm.HTTPStatus(), gin.H{"code": cm.Code, "error": cm.Msg})
}

// Handler 供测试和自定义 http.Server 使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	// 启动任务调度器
	s.scheduler.Start()

	// 启动 web server
	return s.engine.Run(addr)
}
