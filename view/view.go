// Package view 把 recall / filter / rank / rerank 节点组装成五个内置推荐视图。
//
//	personalized: catalog → preference filter → relevance → (diversity) → topN
//	similar:      similar → topN
//	trending:     trending → backfill → topN
//	seasonal:     seasonal → quality → backfill → topN
//	pairing:      pairing → quality → topN
//
// 所有视图只读取 RecommendContext 中的状态，不修改画像、偏好与行为日志。
package view

import (
	"time"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/filter"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/rank"
	"github.com/rushteam/winerec/recall"
	"github.com/rushteam/winerec/rerank"
)

// 内置视图名，同时作为 RecommendContext.Scene。
const (
	Personalized = "personalized"
	Similar      = "similar"
	Trending     = "trending"
	Seasonal     = "seasonal"
	MealPairing  = "pairing"
)

// 请求参数名
const (
	ParamItemID = "item_id"
	ParamMeal   = "meal"
)

// Builtin 按固定顺序列出内置视图。
var Builtin = []string{Personalized, Similar, Trending, Seasonal, MealPairing}

// IsBuiltin 是否为内置视图名。
func IsBuiltin(name string) bool {
	for _, n := range Builtin {
		if n == name {
			return true
		}
	}
	return false
}

// Options 是构建视图所需的依赖与参数。
type Options struct {
	// Scorer 个性化打分器，为空时关闭抖动
	Scorer *rank.Scorer
	// DiversityCap 个性化视图每个类别的上限，0 表示不打散
	DiversityCap int
	// TrendingWindow 热门统计窗口，0 表示 30 天
	TrendingWindow time.Duration
	Hooks          []pipeline.Hook
}

func normLimit(limit int) int {
	if limit <= 0 {
		return core.DefaultLimit
	}
	return limit
}

// Build 按名称构建内置视图，未知名称返回 false。
func Build(name string, opts Options, limit int) (*pipeline.Pipeline, bool) {
	switch name {
	case Personalized:
		return NewPersonalized(opts, limit), true
	case Similar:
		return NewSimilar(opts, limit), true
	case Trending:
		return NewTrending(opts, limit), true
	case Seasonal:
		return NewSeasonal(opts, limit), true
	case MealPairing:
		return NewMealPairing(opts, limit), true
	}
	return nil, false
}

// NewPersonalized 个性化 Top-N。
func NewPersonalized(opts Options, limit int) *pipeline.Pipeline {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = rank.NewScorer(0, nil)
	}
	nodes := []pipeline.Node{
		&recall.CatalogRecall{},
		&filter.FilterNode{Filters: []filter.Filter{&filter.PreferenceFilter{}}},
		&rank.RelevanceNode{Scorer: scorer},
	}
	if opts.DiversityCap > 0 {
		nodes = append(nodes, &rerank.Diversity{MaxPerCategory: opts.DiversityCap})
	}
	nodes = append(nodes, &rerank.TopNNode{N: normLimit(limit)})
	return &pipeline.Pipeline{Name: Personalized, Nodes: nodes, Hooks: opts.Hooks}
}

// NewSimilar 与 item_id 参数指定的酒款最相似的 Top-N。
func NewSimilar(opts Options, limit int) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: Similar,
		Nodes: []pipeline.Node{
			&recall.SimilarRecall{Param: ParamItemID},
			&rerank.TopNNode{N: normLimit(limit)},
		},
		Hooks: opts.Hooks,
	}
}

// NewTrending 近期加权热度 Top-N，不足时按评分补足。
func NewTrending(opts Options, limit int) *pipeline.Pipeline {
	n := normLimit(limit)
	return &pipeline.Pipeline{
		Name: Trending,
		Nodes: []pipeline.Node{
			&recall.Trending{Window: opts.TrendingWindow},
			&rerank.Backfill{N: n},
			&rerank.TopNNode{N: n},
		},
		Hooks: opts.Hooks,
	}
}

// NewSeasonal 当季类别按评分排序，不足时按评分补足。
func NewSeasonal(opts Options, limit int) *pipeline.Pipeline {
	n := normLimit(limit)
	return &pipeline.Pipeline{
		Name: Seasonal,
		Nodes: []pipeline.Node{
			&recall.SeasonalRecall{},
			&rank.QualityNode{},
			&rerank.Backfill{N: n},
			&rerank.TopNNode{N: n},
		},
		Hooks: opts.Hooks,
	}
}

// NewMealPairing 按 meal 参数匹配配餐词条，命中的酒款按评分排序。
func NewMealPairing(opts Options, limit int) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Name: MealPairing,
		Nodes: []pipeline.Node{
			&recall.PairingRecall{Param: ParamMeal},
			&rank.QualityNode{},
			&rerank.TopNNode{N: normLimit(limit)},
		},
		Hooks: opts.Hooks,
	}
}
