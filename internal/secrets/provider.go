// Package secrets 按名称解析密钥，密钥来源随 context.Context 传递，只在一次调用内有效
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/iceymoss/go-task-dropbox/pkg/xerr"
)

// Provider 密钥后端需要实现的接口
type Provider interface {
	// Get 按名称读取密钥，不存在时返回 *NotFoundError
	Get(ctx context.Context, key string) (string, error)

	// Name 后端标识（如 "env"、"redis"），用于日志和错误信息
	Name() string
}

// NotFoundError 密钥不存在，或当前没有激活的密钥作用域
type NotFoundError struct {
	Key      string
	Provider string
}

func (e *NotFoundError) Error() string {
	if e.Provider == noneProvider {
		return fmt.Sprintf("secret %q not found: no secret scope active", e.Key)
	}
	return fmt.Sprintf("secret %q not found in provider %q", e.Key, e.Provider)
}

func (e *NotFoundError) Code() int { return xerr.ErrSecretNotFound }

// IsNotFound 判断 err 是否为 *NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
