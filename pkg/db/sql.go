package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLConfig 数据库参数
type SQLConfig struct {
	Driver   string `mapstructure:"driver"` // mysql / postgres
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// Dialector 按驱动名选择 gorm 方言
func Dialector(c SQLConfig) (gorm.Dialector, error) {
	switch strings.ToLower(c.Driver) {
	case "mysql", "":
		return mysql.Open(c.DSN), nil
	case "postgres", "postgresql", "pg":
		return postgres.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", c.Driver)
	}
}

func gormLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(level) {
	case "debug", "info":
		return gormLogger.Info
	case "warning", "warn":
		return gormLogger.Warn
	case "silent":
		return gormLogger.Silent
	default:
		return gormLogger.Error
	}
}

// OpenSQL 打开数据库连接并设置连接池
func OpenSQL(c SQLConfig) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLevel(c.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}

	pool, err := conn.DB()
	if err != nil {
		return nil, err
	}
	maxOpen, maxIdle := c.MaxOpen, c.MaxIdle
	if maxOpen <= 0 {
		maxOpen = 30
	}
	if maxIdle <= 0 {
		maxIdle = 15
	}
	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)

	return conn, nil
}
