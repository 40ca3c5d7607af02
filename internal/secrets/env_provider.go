package secrets

import (
	"context"
	"os"
)

// EnvProvider 从环境变量读取密钥
type EnvProvider struct {
	// prefix 查找时拼在名称前的可选前缀（如 "GOTASK_SECRET_"）
	prefix string
}

// NewEnvProvider 创建 EnvProvider，prefix 可为空
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Get(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(p.prefix + key)
	if !ok {
		return "", &NotFoundError{Key: key, Provider: p.Name()}
	}
	return v, nil
}
