package main

import (
	"context"
	"flag"
	"os"

	"github.com/iceymoss/go-task-dropbox/internal/conf"
	"github.com/iceymoss/go-task-dropbox/internal/server"
	// import anonymously to register tasks to the list
	_ "github.com/iceymoss/go-task-dropbox/internal/tasks/dropbox"
	"github.com/iceymoss/go-task-dropbox/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	// .env 可选
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Fatal(".env error", zap.Error(err))
	}
	defer logger.Sync()

	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("LoadConfig error", zap.Error(err))
	}

	app, err := server.Bootstrap(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Bootstrap error", zap.Error(err))
	}
	defer app.Cleanup()

	srv := server.NewServer(cfg, app.Scheduler, app.Options...)

	logger.Info("dashboard running", zap.String("addr", cfg.Server.Port))
	if err := srv.Run(cfg.Server.Port); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
