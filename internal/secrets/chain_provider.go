package secrets

import "context"

// ChainProvider 按顺序查询多个后端，返回第一个命中的结果
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider 按传入顺序查询
// 非 NotFound 的错误（如 redis 不可用）立即返回，不再继续查找
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (c *ChainProvider) Name() string { return "chain" }

func (c *ChainProvider) Get(ctx context.Context, key string) (string, error) {
	for _, p := range c.providers {
		val, err := p.Get(ctx, key)
		if err == nil {
			return val, nil
		}
		if !IsNotFound(err) {
			return "", err
		}
	}
	return "", &NotFoundError{Key: key, Provider: c.Name()}
}
