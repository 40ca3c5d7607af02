package storage

import (
	"context"
)

// ResultStorage 任务结果存储接口
// 通过实现此接口，可以切换不同的存储服务（本地存储、OSS、S3等）
// 只负责写入，结果的清理由存储服务自身的保留策略处理
type ResultStorage interface {
	// Save 保存一次运行的结果
	// job: 任务名称，作为存储目录
	// filename: 原始文件名（通常取自下载路径）
	// 返回: 结果的访问URL
	Save(ctx context.Context, job, filename string, data []byte) (string, error)
}
