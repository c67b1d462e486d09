// Package engine 提供单个用户会话的推荐引擎。
//
// 一个 RecommendationEngine 持有一个会话的目录快照、行为日志、口味画像与偏好集合，
// 通过注入的 core.CatalogSource 与 core.Store 与外部交互，没有任何全局单例。
// 所有公开方法串行执行：状态变更后立即同步落盘，一次一个写入，顺序与行为发生顺序一致。
//
// 失败都在本地降级处理：目录不可用时使用空目录，持久化读写失败时回退到默认状态
// 并在本会话内停止持久化，未知酒款的行为被忽略、查询返回空列表。
// 只有非法输入（未知行为类型、未知视图、越界的偏好值）会返回错误。
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/catalog"
	"github.com/rushteam/winerec/config"
	_ "github.com/rushteam/winerec/config/builders"
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/history"
	"github.com/rushteam/winerec/metrics"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/profile"
	"github.com/rushteam/winerec/rank"
	"github.com/rushteam/winerec/rerank"
	"github.com/rushteam/winerec/store"
	"github.com/rushteam/winerec/view"
)

// RecommendationEngine 是一个会话的推荐引擎，可并发调用（内部串行化）。
type RecommendationEngine struct {
	mu sync.Mutex

	id      string
	opts    options
	logger  zerolog.Logger
	metrics *metrics.Metrics

	catalog *catalog.Store
	state   *store.StateStore
	persist bool
	ready   bool

	log         *history.Log
	learner     *profile.Learner
	profile     *core.TasteProfile
	preferences *core.PreferenceSet
	scorer      *rank.Scorer
	viewOpts    view.Options
	custom      map[string]*pipeline.Pipeline
}

// New 创建引擎。backend 为 nil 时不做持久化。
// 自定义视图配置非法时返回 INVALID_INPUT。
func New(source core.CatalogSource, backend core.Store, opts ...Option) (*RecommendationEngine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger := o.logger.With().Str("component", "engine").Str("session", id).Logger()

	e := &RecommendationEngine{
		id:          id,
		opts:        o,
		logger:      logger,
		metrics:     o.metrics,
		learner:     profile.NewLearner(logger),
		profile:     core.NewTasteProfile(),
		preferences: core.NewPreferenceSet(),
		scorer:      rank.NewScorer(o.jitter, o.randSource()),
		custom:      make(map[string]*pipeline.Pipeline),
	}

	catOpts := []catalog.Option{catalog.WithLogger(logger)}
	if o.metrics != nil {
		catOpts = append(catOpts, catalog.WithObserver(o.metrics))
	}
	e.catalog = catalog.New(source, append(catOpts, o.catalogOpts...)...)

	if backend != nil {
		e.state = store.NewStateStore(backend, o.namespace)
		e.persist = true
	}

	logOpts := []history.Option{history.WithLogger(logger), history.WithSaver(e.saveInteractions)}
	if o.logLimit > 0 {
		logOpts = append(logOpts, history.WithLimit(o.logLimit))
	}
	e.log = history.New(e.catalog, logOpts...)

	hooks := []pipeline.Hook{&pipeline.LogHook{Logger: logger}}
	e.viewOpts = view.Options{
		Scorer:         e.scorer,
		DiversityCap:   o.diversityCap,
		TrendingWindow: o.trendingWindow,
		Hooks:          hooks,
	}

	factory := o.factory
	if factory == nil {
		factory = config.DefaultFactory()
	}
	for _, vc := range o.views {
		if view.IsBuiltin(vc.Name) {
			return nil, core.NewDomainError(core.ModuleView, core.ErrorCodeInvalidInput,
				fmt.Sprintf("view %q shadows a builtin view", vc.Name))
		}
		p, err := vc.Build(factory)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleView, core.ErrorCodeInvalidInput, "engine: build custom view", err)
		}
		p.Hooks = hooks
		e.custom[vc.Name] = p
	}
	return e, nil
}

// SessionID 返回会话 ID（用于日志关联）。
func (e *RecommendationEngine) SessionID() string { return e.id }

// Init 读取持久化状态并加载目录。重复调用无副作用。
func (e *RecommendationEngine) Init(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
}

func (e *RecommendationEngine) initLocked(ctx context.Context) {
	if e.ready {
		return
	}
	e.ready = true

	if e.state != nil {
		st, err := e.state.Load(ctx)
		if err != nil {
			// 损坏或不可读：使用默认状态，本会话不再持久化，避免覆盖现有数据
			e.persist = false
			e.metrics.RecordPersistenceError("read")
			e.logger.Warn().Err(err).Msg("persisted state unreadable, continuing without persistence")
			st = store.DefaultState()
		}
		e.profile = st.Profile
		e.preferences = st.Preferences
		e.log.Restore(st.Interactions)
	}

	if _, err := e.catalog.Load(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("catalog unavailable, serving empty catalog")
	}
	e.logger.Info().
		Int("catalog", len(e.catalog.Snapshot())).
		Int("interactions", e.log.Len()).
		Bool("persist", e.persist).
		Msg("engine ready")
}

// ReloadCatalog 重新拉取目录。失败时保留当前快照并返回 CATALOG_UNAVAILABLE，
// 调用方可以忽略该错误。
func (e *RecommendationEngine) ReloadCatalog(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	_, err := e.catalog.Reload(ctx)
	return err
}

// Catalog 返回当前目录快照（只读）。
func (e *RecommendationEngine) Catalog(ctx context.Context) []core.Wine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	return e.catalog.Items(ctx)
}

// RecordInteraction 记录一次行为并更新画像与偏好。
//
// 未知行为类型返回 INVALID_INPUT；酒款不在当前目录中时静默忽略。
func (e *RecommendationEngine) RecordInteraction(ctx context.Context, itemID string, kind core.InteractionKind) error {
	if !kind.Valid() {
		_, err := core.ParseInteractionKind(string(kind))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	e.catalog.Items(ctx)

	wine, ok := e.catalog.FindByID(itemID)
	if !ok {
		e.metrics.RecordInteraction(kind, false)
		e.logger.Debug().Str("item", itemID).Str("kind", string(kind)).Msg("interaction for unknown item ignored")
		return nil
	}

	if _, recorded, err := e.log.Record(ctx, itemID, kind, e.opts.now()); err != nil || !recorded {
		e.metrics.RecordInteraction(kind, false)
		return err
	}
	e.metrics.RecordInteraction(kind, true)

	change := e.learner.Learn(e.profile, e.preferences, &wine, kind)
	if change.Any() {
		e.saveProfile(ctx)
		e.savePreferences(ctx)
	}
	return nil
}

// Personalized 个性化推荐 Top-N，limit <= 0 时为 10。
func (e *RecommendationEngine) Personalized(ctx context.Context, limit int) []*core.Item {
	return e.run(ctx, view.Personalized, limit, nil)
}

// Similar 与 itemID 最相似的酒款，不含自身；酒款未知时返回空列表。
func (e *RecommendationEngine) Similar(ctx context.Context, itemID string, limit int) []*core.Item {
	return e.run(ctx, view.Similar, limit, map[string]any{view.ParamItemID: itemID})
}

// Trending 最近 30 天加权热度，不足时按评分补足。
func (e *RecommendationEngine) Trending(ctx context.Context, limit int) []*core.Item {
	return e.run(ctx, view.Trending, limit, nil)
}

// Seasonal 当季推荐，不足时按评分补足。
func (e *RecommendationEngine) Seasonal(ctx context.Context, limit int) []*core.Item {
	return e.run(ctx, view.Seasonal, limit, nil)
}

// MealPairing 按菜名推荐搭配的酒款。
func (e *RecommendationEngine) MealPairing(ctx context.Context, meal string, limit int) []*core.Item {
	return e.run(ctx, view.MealPairing, limit, map[string]any{view.ParamMeal: meal})
}

// View 按名称执行内置或自定义视图。params 透传为请求参数。
// 名称未知时返回 INVALID_INPUT。
func (e *RecommendationEngine) View(ctx context.Context, name string, limit int, params map[string]any) ([]*core.Item, error) {
	if !view.IsBuiltin(name) {
		e.mu.Lock()
		_, ok := e.custom[name]
		e.mu.Unlock()
		if !ok {
			return nil, core.NewDomainError(core.ModuleView, core.ErrorCodeInvalidInput, fmt.Sprintf("unknown view %q", name))
		}
	}
	return e.run(ctx, name, limit, params), nil
}

// Views 返回全部可用视图名（内置在前）。
func (e *RecommendationEngine) Views() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := append([]string(nil), view.Builtin...)
	for _, vc := range e.opts.views {
		names = append(names, vc.Name)
	}
	return names
}

func (e *RecommendationEngine) run(ctx context.Context, name string, limit int, params map[string]any) []*core.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	start := time.Now()

	p, ok := view.Build(name, e.viewOpts, limit)
	if !ok {
		custom := e.custom[name]
		n := limit
		if n <= 0 {
			n = core.DefaultLimit
		}
		p = &pipeline.Pipeline{
			Name:  custom.Name,
			Nodes: append(append([]pipeline.Node(nil), custom.Nodes...), &rerank.TopNNode{N: n}),
			Hooks: custom.Hooks,
		}
	}

	rctx := &core.RecommendContext{
		SessionID:    e.id,
		Scene:        name,
		Catalog:      e.catalog.Items(ctx),
		Profile:      e.profile,
		Preferences:  e.preferences,
		Interactions: e.log.View(),
		Now:          e.opts.now(),
		Params:       params,
	}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		e.logger.Warn().Err(err).Str("view", name).Msg("view failed, returning empty list")
		items = nil
	}
	if items == nil {
		items = []*core.Item{}
	}
	e.metrics.RecordView(name, time.Since(start), len(items))
	e.logger.Debug().Str("view", name).Int("limit", limit).Int("results", len(items)).Msg("view served")
	return items
}
