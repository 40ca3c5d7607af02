package core

import "context"

// TaskCreator 定义任务构造函数签名
// params 是构造期的结构参数（来自配置文件或 API），构造后不可变
type TaskCreator func(params map[string]any) (Task, error)

// Task 任务接口
type Task interface {
	// Run 执行任务逻辑
	// params 是本次调用的覆盖参数，只对本次调用生效，不得修改任务本身
	// ctx 需携带密钥作用域（见 secrets.WithProvider）
	Run(ctx context.Context, params map[string]any) ([]byte, error)

	// Identifier 返回任务类型标识 (用于日志)
	Identifier() string

	// Metadata 返回调度元数据
	Metadata() Metadata
}
