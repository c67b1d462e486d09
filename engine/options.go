package engine

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/catalog"
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/metrics"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/rank"
)

type options struct {
	logger         zerolog.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
	jitter         float64
	rnd            rank.RandSource
	seed           int64
	namespace      string
	logLimit       int
	trendingWindow time.Duration
	diversityCap   int
	views          []pipeline.ViewConfig
	factory        *pipeline.NodeFactory
	catalogOpts    []catalog.Option
}

func defaultOptions() options {
	return options{
		logger:    zerolog.Nop(),
		now:       time.Now,
		jitter:    0.5,
		seed:      time.Now().UnixNano(),
		namespace: "winerec",
	}
}

// Option 配置 RecommendationEngine。
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock 固定时间源，用于测试时间窗口与季节。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithJitter 设置打分抖动上限，0 关闭抖动。
func WithJitter(v float64) Option {
	return func(o *options) {
		if v >= 0 {
			o.jitter = v
		}
	}
}

// WithSeed 用固定种子构造抖动随机源。
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithRand 直接注入抖动随机源，优先于 WithSeed。
func WithRand(r rank.RandSource) Option {
	return func(o *options) { o.rnd = r }
}

// WithNamespace 设置持久化 key 的命名空间，通常是用户 ID。
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithLogLimit 行为日志上限，默认且最多为 core.MaxInteractions。
func WithLogLimit(n int) Option {
	return func(o *options) { o.logLimit = min(n, core.MaxInteractions) }
}

// WithTrendingWindow 热门统计窗口，默认 30 天。
func WithTrendingWindow(d time.Duration) Option {
	return func(o *options) { o.trendingWindow = d }
}

// WithDiversity 个性化视图中每个类别的上限，0 表示不打散。
func WithDiversity(perCategory int) Option {
	return func(o *options) { o.diversityCap = perCategory }
}

// WithViews 注册自定义视图，factory 为空时使用 config.DefaultFactory()。
func WithViews(views []pipeline.ViewConfig, factory *pipeline.NodeFactory) Option {
	return func(o *options) {
		o.views = append(o.views, views...)
		if factory != nil {
			o.factory = factory
		}
	}
}

// WithCatalogOptions 透传给 catalog.New 的选项（超时、熔断参数等）。
func WithCatalogOptions(opts ...catalog.Option) Option {
	return func(o *options) { o.catalogOpts = append(o.catalogOpts, opts...) }
}

func (o *options) randSource() rank.RandSource {
	if o.rnd != nil {
		return o.rnd
	}
	return rand.New(rand.NewSource(o.seed)) //nolint:gosec // 抖动不需要密码学随机
}
