package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/catalog"
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/store"
)

// EnvPrefix 环境变量前缀，例如 WINEREC_STORE_DRIVER=redis。
const EnvPrefix = "WINEREC_"

// Config 是 winerec 的完整配置。加载顺序：默认值 < YAML 文件 < 环境变量。
//
//	engine:
//	  default_limit: 10
//	  jitter: 0.5
//	store:
//	  driver: badger
//	  path: /var/lib/winerec
//	catalog:
//	  path: wines.json
//	views:
//	  - name: french-reds
//	    nodes: [...]
type Config struct {
	Engine  EngineConfig          `koanf:"engine"`
	Store   StoreConfig           `koanf:"store"`
	Catalog CatalogConfig         `koanf:"catalog"`
	Log     LogConfig             `koanf:"log"`
	Views   []pipeline.ViewConfig `koanf:"views"`
}

// EngineConfig 推荐引擎参数。
type EngineConfig struct {
	DefaultLimit   int           `koanf:"default_limit" validate:"gte=1,lte=1000"`
	Jitter         float64       `koanf:"jitter" validate:"gte=0"`
	Seed           int64         `koanf:"seed"`
	LogLimit       int           `koanf:"log_limit" validate:"gte=1,lte=100"`
	TrendingWindow time.Duration `koanf:"trending_window" validate:"gt=0"`
	Diversity      int           `koanf:"diversity" validate:"gte=0"`
}

// StoreConfig 持久化后端。driver 为 memory / redis / badger。
type StoreConfig struct {
	Driver    string `koanf:"driver" validate:"oneof=memory redis badger"`
	Addr      string `koanf:"addr" validate:"required_if=Driver redis"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db" validate:"gte=0"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace" validate:"required"`
}

// CatalogConfig 目录来源：path 与 url 二选一，url 优先。
type CatalogConfig struct {
	Path               string        `koanf:"path"`
	URL                string        `koanf:"url" validate:"omitempty,url"`
	Timeout            time.Duration `koanf:"timeout" validate:"gt=0"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"gte=1"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout" validate:"gt=0"`
}

// LogConfig 日志级别与格式（json / console）。
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			DefaultLimit:   core.DefaultLimit,
			Jitter:         core.DefaultJitter,
			LogLimit:       core.MaxInteractions,
			TrendingWindow: core.TrendingWindow,
		},
		Store: StoreConfig{
			Driver:    "memory",
			Namespace: "winerec",
		},
		Catalog: CatalogConfig{
			Timeout:            10 * time.Second,
			BreakerMaxFailures: 3,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys 把环境变量名映射到配置路径；key 本身含下划线，不能直接按 _ 切分。
var envKeys = map[string]string{
	"engine_default_limit":         "engine.default_limit",
	"engine_jitter":                "engine.jitter",
	"engine_seed":                  "engine.seed",
	"engine_log_limit":             "engine.log_limit",
	"engine_trending_window":       "engine.trending_window",
	"engine_diversity":             "engine.diversity",
	"store_driver":                 "store.driver",
	"store_addr":                   "store.addr",
	"store_password":               "store.password",
	"store_db":                     "store.db",
	"store_path":                   "store.path",
	"store_namespace":              "store.namespace",
	"catalog_path":                 "catalog.path",
	"catalog_url":                  "catalog.url",
	"catalog_timeout":              "catalog.timeout",
	"catalog_breaker_max_failures": "catalog.breaker_max_failures",
	"catalog_breaker_open_timeout": "catalog.breaker_open_timeout",
	"log_level":                    "log.level",
	"log_format":                   "log.format",
}

// envTransform 返回空串时 koanf 忽略该变量。
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

// Load 加载配置，path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate 校验字段取值；视图中的 node 类型由 ValidateViews 在注册完成后校验。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Store.Driver == "badger" && c.Store.Path == "" {
		// 空路径会打开内存模式的 badger，重启后数据丢失
		return fmt.Errorf("store.path is required for badger driver")
	}
	return nil
}

// OpenStore 按 driver 创建持久化后端。
func (c StoreConfig) OpenStore(ctx context.Context) (core.Store, error) {
	switch c.Driver {
	case "redis":
		return store.NewRedisStore(ctx, store.RedisOptions{Addr: c.Addr, Password: c.Password, DB: c.DB})
	case "badger":
		return store.OpenBadgerStore(c.Path)
	case "memory", "":
		return store.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", c.Driver)
}

// Source 返回目录来源；未配置时返回空目录。
func (c CatalogConfig) Source() core.CatalogSource {
	switch {
	case c.URL != "":
		return catalog.NewHTTPSource(c.URL, c.Timeout)
	case c.Path != "":
		return catalog.NewFileSource(c.Path)
	}
	return catalog.StaticSource(nil)
}

// Options 返回目录缓存的超时与熔断参数。
func (c CatalogConfig) Options() []catalog.Option {
	return []catalog.Option{
		catalog.WithTimeout(c.Timeout),
		catalog.WithBreaker(catalog.BreakerConfig{
			MaxFailures: c.BreakerMaxFailures,
			OpenTimeout: c.BreakerOpenTimeout,
		}),
	}
}

// Logger 按配置构造 zerolog.Logger，w 为空时写 stderr。
func (c LogConfig) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if c.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
