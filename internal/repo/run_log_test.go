package repo

import (
	"context"
	"testing"
	"time"

	"github.com/iceymoss/go-task-dropbox/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// dryRunDB 只生成 SQL，不连接数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "u:p@tcp(127.0.0.1:3306)/gotask?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return conn
}

func TestToLog(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	log := toLog(engine.RunRecord{
		Job:     "nightly",
		Task:    "dropbox:download",
		Success: false,
		Error:   "secret not found",
		Start:   start,
		End:     start.Add(1500 * time.Millisecond),
	})

	assert.Equal(t, RunStatusFailed, log.Status)
	assert.Equal(t, int64(1500), log.DurationMs)
	assert.Equal(t, "secret not found", log.ErrorMsg)
	assert.Equal(t, "task_run_logs", log.TableName())
}

func TestRecordRunBuildsInsert(t *testing.T) {
	conn := dryRunDB(t)

	stmt := conn.Session(&gorm.Session{DryRun: true}).Create(toLog(engine.RunRecord{
		Job:     "nightly",
		Task:    "dropbox:download",
		Success: true,
		Bytes:   10,
	})).Statement

	assert.Contains(t, stmt.SQL.String(), "INSERT INTO `task_run_logs`")
	assert.NoError(t, NewRunLogRepo(conn).RecordRun(context.Background(), engine.RunRecord{Job: "nightly", Success: true}))
}

func TestRecentBuildsQuery(t *testing.T) {
	conn := dryRunDB(t)

	var sql string
	require.NoError(t, conn.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}))

	list, err := NewRunLogRepo(conn).Recent(context.Background(), "nightly", 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Contains(t, sql, "FROM `task_run_logs`")
	assert.Contains(t, sql, "WHERE job_name = ?")
	assert.Contains(t, sql, "ORDER BY id DESC")
	assert.Contains(t, sql, "LIMIT")
}
