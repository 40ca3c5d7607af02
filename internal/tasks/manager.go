package tasks

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iceymoss/go-task-dropbox/internal/core"
	"github.com/iceymoss/go-task-dropbox/pkg/errors"
	"github.com/iceymoss/go-task-dropbox/pkg/xerr"
)

var (
	registry = make(map[string]core.TaskCreator) // 任务类型注册（供 Config / API 调用）
	mu       sync.RWMutex
)

// Register 注册任务类型，任务包在 init 中调用
func Register(name string, creator core.TaskCreator) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = creator
}

// Build 按类型名和构造参数创建任务实例
func Build(name string, params map[string]any) (core.Task, error) {
	mu.RLock()
	creator, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.New(xerr.ErrResourceNotFound, fmt.Sprintf("task implementation '%s' not found", name))
	}
	return creator(params)
}

// Names 返回已注册的任务类型
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	list := make([]string, 0, len(registry))
	for name := range registry {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}
