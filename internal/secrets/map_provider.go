package secrets

import "context"

// MapProvider 内存中的密钥表
type MapProvider struct {
	values map[string]string
}

// NewMapProvider 复制一份 values，调用方之后的修改不会生效
func NewMapProvider(values map[string]string) *MapProvider {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &MapProvider{values: cp}
}

func (p *MapProvider) Name() string { return "local" }

func (p *MapProvider) Get(_ context.Context, key string) (string, error) {
	v, ok := p.values[key]
	if !ok {
		return "", &NotFoundError{Key: key, Provider: p.Name()}
	}
	return v, nil
}
