// Package catalog 持有当前会话的酒款目录快照。
//
// 目录只拉取一次（初始化时或首次查询时）并缓存；外部拉取失败时进入降级模式，
// 使用空目录，保证下游的打分与视图仍然可调用。
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/winerec/core"
)

// BreakerConfig 是目录拉取的熔断参数。
type BreakerConfig struct {
	// MaxFailures 连续失败多少次后熔断
	MaxFailures uint32
	// OpenTimeout 熔断后多久进入半开状态
	OpenTimeout time.Duration
}

// LoadObserver 接收每次拉取的结果，用于打点。
type LoadObserver interface {
	ObserveCatalogLoad(size int, d time.Duration, err error)
}

// Store 是会话内的目录缓存，可并发读取。
type Store struct {
	source   core.CatalogSource
	breaker  *gobreaker.CircuitBreaker[[]core.Wine]
	group    singleflight.Group
	logger   zerolog.Logger
	timeout  time.Duration
	observer LoadObserver

	mu       sync.RWMutex
	wines    []core.Wine
	byID     map[string]int
	loaded   bool
	degraded bool
}

// Option 配置 Store。
type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l.With().Str("component", "catalog").Logger() }
}

// WithTimeout 单次拉取的超时时间，0 表示只受 ctx 控制。
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithObserver(o LoadObserver) Option {
	return func(s *Store) { s.observer = o }
}

func WithBreaker(cfg BreakerConfig) Option {
	return func(s *Store) { s.breaker = newBreaker(cfg, &s.logger) }
}

func newBreaker(cfg BreakerConfig, logger *zerolog.Logger) *gobreaker.CircuitBreaker[[]core.Wine] {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[[]core.Wine](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog breaker state changed")
		},
	})
}

func New(source core.CatalogSource, opts ...Option) *Store {
	s := &Store{
		source: source,
		logger: zerolog.Nop(),
		byID:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = newBreaker(BreakerConfig{}, &s.logger)
	}
	return s
}

// Load 从外部拉取目录并替换快照。
//
// 失败时返回 CATALOG_UNAVAILABLE：如果之前从未成功加载，快照变为空目录（降级模式）；
// 否则保留上一次的快照。
func (s *Store) Load(ctx context.Context) ([]core.Wine, error) {
	v, err, _ := s.group.Do("load", func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return s.Snapshot(), err
	}
	return v.([]core.Wine), nil
}

func (s *Store) fetch(ctx context.Context) ([]core.Wine, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var wines []core.Wine
	var err error
	if s.source == nil {
		err = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable, "catalog: no source configured")
	} else {
		wines, err = s.breaker.Execute(func() ([]core.Wine, error) {
			return s.source.Load(ctx)
		})
	}
	if s.observer != nil {
		s.observer.ObserveCatalogLoad(len(wines), time.Since(start), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !s.loaded {
			s.setLocked(nil)
			s.degraded = true
		}
		s.logger.Warn().Err(err).Bool("degraded", s.degraded).Msg("catalog load failed")
		if core.IsCatalogUnavailable(err) {
			return nil, err
		}
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable, "catalog: load failed", err)
	}

	s.setLocked(wines)
	s.degraded = false
	s.logger.Debug().Int("size", len(s.wines)).Dur("took", time.Since(start)).Msg("catalog loaded")
	return s.wines, nil
}

// setLocked 替换快照：丢弃空 ID，重复 ID 保留第一个，统一风格写法。
func (s *Store) setLocked(wines []core.Wine) {
	out := make([]core.Wine, 0, len(wines))
	byID := make(map[string]int, len(wines))
	for _, w := range wines {
		if w.ID == "" {
			continue
		}
		if _, dup := byID[w.ID]; dup {
			continue
		}
		w.Style = core.NormalizeStyle(string(w.Style))
		byID[w.ID] = len(out)
		out = append(out, w)
	}
	s.wines = out
	s.byID = byID
	s.loaded = true
}

// Items 返回目录快照；首次调用时拉取，拉取失败返回空目录。
// 返回的切片是共享只读的，调用方不可修改。
func (s *Store) Items(ctx context.Context) []core.Wine {
	s.mu.RLock()
	loaded := s.loaded
	wines := s.wines
	s.mu.RUnlock()
	if loaded {
		return wines
	}
	v, _, _ := s.group.Do("items", func() (any, error) {
		if s.Loaded() {
			return s.Snapshot(), nil
		}
		_, _ = s.fetch(ctx)
		return s.Snapshot(), nil
	})
	return v.([]core.Wine)
}

// Snapshot 返回当前快照，不触发拉取。
func (s *Store) Snapshot() []core.Wine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wines
}

// FindByID 在当前快照中查找酒款。
func (s *Store) FindByID(id string) (core.Wine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return core.Wine{}, false
	}
	return s.wines[i], true
}

// Contains 酒款是否在当前快照中。
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// Loaded 是否已经尝试过加载（成功或降级）。
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Degraded 当前是否处于空目录降级模式。
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Reload 重新拉取目录；失败时保留当前快照。
func (s *Store) Reload(ctx context.Context) ([]core.Wine, error) {
	return s.Load(ctx)
}
