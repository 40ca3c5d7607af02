package dropbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
)

// Fetcher 已认证的客户端
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// ClientFactory 用令牌完成认证，返回可用的 Fetcher
// 测试中替换为桩实现即可，无需改动任务代码
type ClientFactory func(token string) Fetcher

// sdkClient 基于官方 SDK 的实现
type sdkClient struct {
	cfg sdk.Config
}

// NewSDKClient 生产环境使用的 ClientFactory
func NewSDKClient(token string) Fetcher {
	return &sdkClient{cfg: sdk.Config{Token: token, LogLevel: sdk.LogOff}}
}

func (c *sdkClient) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// SDK 不接受 ctx，这里把截止时间换算成 http.Client 超时
	cfg := c.cfg
	if deadline, ok := ctx.Deadline(); ok {
		cfg.Client = &http.Client{Timeout: time.Until(deadline)}
	}

	_, content, err := files.New(cfg).Download(files.NewDownloadArg(path))
	if err != nil {
		return nil, err
	}
	defer content.Close()

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}
