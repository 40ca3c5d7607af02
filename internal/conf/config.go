package conf

import (
	"os"
	"strings"
	"time"

	"github.com/iceymoss/go-task-dropbox/pkg/db"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig  `mapstructure:"server"`
	Secrets    SecretsConfig `mapstructure:"secrets"`
	Storage    StorageConfig `mapstructure:"storage"`
	Database   db.SQLConfig  `mapstructure:"database"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	Jobs       []JobConfig   `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// SecretsConfig 密钥来源，按 local -> redis -> env 的顺序查找
type SecretsConfig struct {
	EnvPrefix string        `mapstructure:"env_prefix"`
	Local     []LocalSecret `mapstructure:"local"`
	Redis     RedisSecrets  `mapstructure:"redis"`
}

// LocalSecret 以列表形式配置，viper 会把 map 的 key 转成小写，而密钥名称区分大小写
type LocalSecret struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// LocalMap 转成 name -> value
// 展开后为空的条目被忽略，交给后面的 redis / env 继续查找
func (c SecretsConfig) LocalMap() map[string]string {
	m := make(map[string]string, len(c.Local))
	for _, s := range c.Local {
		if v := os.ExpandEnv(s.Value); v != "" {
			m[s.Name] = v
		}
	}
	return m
}

type RedisSecrets struct {
	db.RedisConfig `mapstructure:",squash"`
	Hash           string `mapstructure:"hash"`
}

type StorageConfig struct {
	BasePath string `mapstructure:"base_path"`
	BaseURL  string `mapstructure:"base_url"`
}

type JobConfig struct {
	Name      string         `mapstructure:"name"`
	Task      string         `mapstructure:"task"`
	Cron      string         `mapstructure:"cron"`
	Enable    bool           `mapstructure:"enable"`
	Params    map[string]any `mapstructure:"params"`    // 构造参数
	Overrides map[string]any `mapstructure:"overrides"` // 运行时覆盖参数
}

// LoadConfig 加载配置
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GOTASK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // 自动读取环境变量

	v.SetDefault("server.port", ":8080")
	v.SetDefault("run_timeout", "65m")
	v.SetDefault("secrets.redis.hash", "gotask:secrets")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 显式展开环境变量 ${VAR}
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
