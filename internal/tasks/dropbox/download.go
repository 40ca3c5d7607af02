package dropbox

import (
	"context"
	"time"

	"github.com/iceymoss/go-task-dropbox/internal/core"
	"github.com/iceymoss/go-task-dropbox/internal/secrets"
	"github.com/iceymoss/go-task-dropbox/internal/tasks"
	"github.com/iceymoss/go-task-dropbox/pkg/logger"

	"go.uber.org/zap"
)

const (
	TaskName = "dropbox:download"

	// DefaultAccessTokenSecret 默认的令牌密钥名称
	DefaultAccessTokenSecret = "DROPBOX_ACCESS_TOKEN"
)

func init() {
	tasks.Register(TaskName, NewFromParams)
}

// Config 构造参数
type Config struct {
	Path              *string       `mapstructure:"path"`                // 必填，空字符串合法
	AccessTokenSecret string        `mapstructure:"access_token_secret"` // 密钥名称，不是令牌本身
	Name              string        `mapstructure:"name"`
	Checkpoint        *bool         `mapstructure:"checkpoint"`
	Tags              []string      `mapstructure:"tags"`
	Timeout           time.Duration `mapstructure:"timeout"` // 作用于外部调用

	Client ClientFactory `mapstructure:"-"`
}

// Overrides 单次调用的覆盖参数，零值表示沿用构造时的默认值
type Overrides struct {
	AccessTokenSecret string `mapstructure:"access_token_secret"`
}

// Download 从 Dropbox 下载单个文件
// 构造后只读，可被并发调用
type Download struct {
	path              string
	accessTokenSecret string
	timeout           time.Duration
	meta              core.Metadata
	client            ClientFactory
}

// New 只做结构校验，不做 I/O，也不解析密钥
func New(cfg Config) (*Download, error) {
	if cfg.Path == nil {
		return nil, &core.MissingArgumentError{Task: TaskName, Arg: "path"}
	}

	d := &Download{
		path:              *cfg.Path,
		accessTokenSecret: cfg.AccessTokenSecret,
		timeout:           cfg.Timeout,
		meta: core.Metadata{
			Name:       cfg.Name,
			Checkpoint: cfg.Checkpoint,
			Tags:       core.NewTagSet(cfg.Tags...),
		},
		client: cfg.Client,
	}
	if d.accessTokenSecret == "" {
		d.accessTokenSecret = DefaultAccessTokenSecret
	}
	if d.client == nil {
		d.client = NewSDKClient
	}
	return d, nil
}

// NewFromParams 从配置参数构造，供任务注册表使用
func NewFromParams(params map[string]any) (core.Task, error) {
	var cfg Config
	if err := tasks.DecodeParams(TaskName, params, &cfg); err != nil {
		return nil, err
	}
	return New(cfg)
}

func (d *Download) Identifier() string { return TaskName }

func (d *Download) Metadata() core.Metadata { return d.meta }

func (d *Download) Path() string { return d.path }

func (d *Download) AccessTokenSecret() string { return d.accessTokenSecret }

// Run 实现 core.Task，params 只接受 access_token_secret
func (d *Download) Run(ctx context.Context, params map[string]any) ([]byte, error) {
	var o Overrides
	if err := tasks.DecodeParams(TaskName, params, &o); err != nil {
		return nil, err
	}
	return d.Download(ctx, o)
}

// Download 合并覆盖参数、解析密钥、调用外部接口
// 密钥缺失时返回 *secrets.NotFoundError 且不会发起外部调用
func (d *Download) Download(ctx context.Context, o Overrides) ([]byte, error) {
	secretName := d.accessTokenSecret
	if o.AccessTokenSecret != "" {
		secretName = o.AccessTokenSecret
	}

	token, err := secrets.Resolve(ctx, secretName)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger.Debug("dropbox download",
		zap.String("path", d.path),
		zap.String("secret", secretName),
	)

	data, err := d.client(token).Fetch(callCtx, d.path)
	if err != nil {
		return nil, &core.ExecutionError{Task: TaskName, Op: "download", Err: err}
	}
	return data, nil
}
