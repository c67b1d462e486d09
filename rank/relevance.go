package rank

import (
	"context"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// RelevanceNode 用 Scorer 为候选打个性化相关度分数，并按分数降序排序。
// 硬过滤应在它之前由 filter.PreferenceFilter 完成。
type RelevanceNode struct {
	Scorer *Scorer
}

func (n *RelevanceNode) Name() string        { return "rank.relevance" }
func (n *RelevanceNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RelevanceNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil {
		return items, nil
	}
	sig := NewSignals(rctx.Catalog, rctx.Interactions)
	for _, it := range items {
		if it == nil || it.Wine == nil {
			continue
		}
		b := n.Scorer.Score(it.Wine, rctx.Profile, rctx.Preferences, sig)
		it.Score = b.Total
		putBreakdown(it, b)
	}
	core.SortItems(items)
	return items, nil
}

func putBreakdown(it *core.Item, b Breakdown) {
	const src = "rank.relevance"
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	it.Labels["quality"] = utils.ScoreLabel(b.Quality, src)
	it.Labels["taste_match"] = utils.ScoreLabel(b.TasteMatch, src)
	if b.Category != 0 {
		it.Labels["preferred_category"] = utils.ScoreLabel(b.Category, src)
	}
	if b.Region != 0 {
		it.Labels["preferred_region"] = utils.ScoreLabel(b.Region, src)
	}
	if b.Boost != 0 {
		it.Labels["interaction_boost"] = utils.ScoreLabel(b.Boost, src)
	}
	it.Labels["relevance"] = utils.ScoreLabel(b.Total, src)
}

// QualityNode 以评分作为分数，按评分降序排序。
// 季节、配餐等非个性化视图使用。
type QualityNode struct{}

func (n *QualityNode) Name() string        { return "rank.quality" }
func (n *QualityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *QualityNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil || it.Wine == nil {
			continue
		}
		it.Score = it.Wine.Quality
	}
	core.SortItems(items)
	return items, nil
}
