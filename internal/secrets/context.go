package secrets

import "context"

const noneProvider = "none"

// scopeKey 用于在 context 中存储密钥作用域
type scopeKey struct{}

// WithProvider 在 ctx 上激活一个密钥作用域
// 内层作用域完整遮蔽外层，不做合并
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, scopeKey{}, p)
}

// WithSecrets 以内存 map 激活作用域
func WithSecrets(ctx context.Context, values map[string]string) context.Context {
	return WithProvider(ctx, NewMapProvider(values))
}

// FromContext 取出当前作用域的 Provider
func FromContext(ctx context.Context) (Provider, bool) {
	p, ok := ctx.Value(scopeKey{}).(Provider)
	return p, ok && p != nil
}

// Scope 仅在 fn 执行期间激活 values，fn 返回后调用方的 ctx 不受影响
func Scope(ctx context.Context, values map[string]string, fn func(ctx context.Context) error) error {
	return fn(WithSecrets(ctx, values))
}

// Resolve 在当前作用域中按名称查找密钥
// 没有激活作用域时立即失败
func Resolve(ctx context.Context, name string) (string, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return "", &NotFoundError{Key: name, Provider: noneProvider}
	}
	return p.Get(ctx, name)
}
