package engine

import (
	"slices"
	"sort"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// JobStats 任务运行时状态
type JobStats struct {
	Name        string   `json:"name"`
	Task        string   `json:"task"`
	CronExpr    string   `json:"cron_expr"`
	Status      string   `json:"status"`      // Idle, Running, Error
	LastRunTime string   `json:"last_run"`    // 格式化后的时间
	NextRunTime string   `json:"next_run"`    // 格式化后的时间
	LastResult  string   `json:"last_result"` // 成功或错误信息
	LastBytes   int      `json:"last_bytes"`
	ResultURL   string   `json:"result_url,omitempty"`
	RunCount    int64    `json:"run_count"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source"` // 任务来源 (例如: "YAML", "API")
}

type StatManager struct {
	stats map[string]*JobStats
	mu    sync.RWMutex
}

func NewStatManager() *StatManager {
	return &StatManager{
		stats: make(map[string]*JobStats),
	}
}

func (m *StatManager) Set(name string, stat *JobStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[name] = stat
}

// Update 在锁内修改状态
func (m *StatManager) Update(name string, fn func(*JobStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[name]; ok {
		fn(s)
	}
}

// Get 返回副本
func (m *StatManager) Get(name string) (JobStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[name]
	if !ok {
		return JobStats{}, false
	}
	return s.clone(), true
}

func (m *StatManager) GetAll() []JobStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]JobStats, 0, len(m.stats))
	for _, s := range m.stats {
		list = append(list, s.clone())
	}
	// 按名称排序
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// clone Tags 也需要复制，避免调用方修改到内部状态
func (s *JobStats) clone() JobStats {
	cp := *s
	cp.Tags = slices.Clone(s.Tags)
	return cp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
