package server

import (
	"context"

	"github.com/iceymoss/go-task-dropbox/internal/conf"
	"github.com/iceymoss/go-task-dropbox/internal/engine"
	"github.com/iceymoss/go-task-dropbox/internal/repo"
	"github.com/iceymoss/go-task-dropbox/internal/secrets"
	"github.com/iceymoss/go-task-dropbox/pkg/db"
	"github.com/iceymoss/go-task-dropbox/pkg/logger"
	"github.com/iceymoss/go-task-dropbox/pkg/storage"

	"go.uber.org/zap"
)

// BuildSecrets 按 local -> redis -> env 组装密钥链
func BuildSecrets(ctx context.Context, c conf.SecretsConfig) (secrets.Provider, func(), error) {
	providers := []secrets.Provider{secrets.NewMapProvider(c.LocalMap())}
	cleanup := func() {}

	if c.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, c.Redis.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, secrets.NewRedisProvider(rdb, c.Redis.Hash))
		cleanup = func() { _ = rdb.Close() }
	}

	providers = append(providers, secrets.NewEnvProvider(c.EnvPrefix))
	return secrets.NewChainProvider(providers...), cleanup, nil
}

// App 启动所需的全部依赖
type App struct {
	Scheduler *engine.Scheduler
	Options   []Option // 传给 NewServer
	Cleanup   func()
}

// Bootstrap 根据配置组装调度器和 API 依赖
func Bootstrap(ctx context.Context, cfg *conf.Config) (*App, error) {
	provider, cleanup, err := BuildSecrets(ctx, cfg.Secrets)
	if err != nil {
		return nil, err
	}

	app := &App{Cleanup: cleanup}
	opts := []engine.Option{
		engine.WithSecrets(provider),
		engine.WithRunTimeout(cfg.RunTimeout),
	}

	if cfg.Storage.BasePath != "" {
		opts = append(opts, engine.WithStorage(storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)))
	}

	if cfg.Database.DSN != "" {
		conn, err := db.OpenSQL(cfg.Database)
		if err != nil {
			cleanup()
			return nil, err
		}
		runLogs := repo.NewRunLogRepo(conn)
		if err := runLogs.Migrate(ctx); err != nil {
			logger.Warn("migrate task_run_logs failed", zap.Error(err))
		}
		opts = append(opts, engine.WithRecorder(runLogs))
		app.Options = append(app.Options, WithRunHistory(runLogs))
	}

	app.Scheduler = engine.NewScheduler(opts...)
	return app, nil
}
