package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iceymoss/go-task-dropbox/pkg/logger"

	"go.uber.org/zap"
)

// LocalStorage 本地文件存储实现
type LocalStorage struct {
	basePath string // 基础存储路径，如 ./data/results
	baseURL  string // 基础访问URL，如 http://localhost:8080/results
	now      func() time.Time
}

// NewLocalStorage 创建本地文件存储实例
func NewLocalStorage(basePath, baseURL string) *LocalStorage {
	// 确保基础目录存在
	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Error("创建存储目录失败", zap.String("path", basePath), zap.Error(err))
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// Save 写入 <basePath>/<job>/<时间戳>_<文件名>
func (s *LocalStorage) Save(ctx context.Context, job, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "result"
	}
	newFilename := fmt.Sprintf("%d_%s", s.now().UnixNano(), name)

	folder := sanitize(job)
	folderPath := filepath.Join(s.basePath, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("创建文件夹失败: %w", err)
	}

	filePath := filepath.Join(folderPath, newFilename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return s.url(filepath.Join(folder, newFilename)), nil
}

// url 获取文件的访问URL
func (s *LocalStorage) url(path string) string {
	urlPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
	if s.baseURL == "" {
		return "/" + urlPath
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + urlPath
}

// sanitize 任务名里的 ':' 等字符不适合做目录名，结果不会跳出 basePath
func sanitize(name string) string {
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '/', '\\', ' ':
			return '_'
		}
		return r
	}, name)
}
