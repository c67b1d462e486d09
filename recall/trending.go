package recall

import (
	"context"
	"time"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// DefaultTrendingWeights 是热度计数中各行为的权重，未列出的行为不计入。
var DefaultTrendingWeights = map[core.InteractionKind]float64{
	core.KindViewed:      1,
	core.KindAddedToCart: 3,
	core.KindPurchased:   5,
	core.KindFavorited:   3,
}

// Trending 是热门召回源：统计时间窗口内的加权行为次数。
// 只返回有热度的酒款；补足由 rerank.Backfill 完成。
type Trending struct {
	// Window 时间窗口，默认 core.TrendingWindow（30 天）
	Window time.Duration
	// Weights 行为权重，为空时使用 DefaultTrendingWeights
	Weights map[core.InteractionKind]float64
}

func (r *Trending) Name() string        { return "recall.trending" }
func (r *Trending) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Trending) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Trending) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Interactions) == 0 {
		return nil, nil
	}
	window := r.Window
	if window <= 0 {
		window = core.TrendingWindow
	}
	weights := r.Weights
	if weights == nil {
		weights = DefaultTrendingWeights
	}
	now := rctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	from := now.Add(-window).UnixMilli()
	to := now.UnixMilli()

	counts := make(map[string]float64)
	for _, rec := range rctx.Interactions {
		if rec.Timestamp < from || rec.Timestamp > to {
			continue
		}
		if w, ok := weights[rec.Kind]; ok {
			counts[rec.ItemID] += w
		}
	}

	out := make([]*core.Item, 0, len(counts))
	for i := range rctx.Catalog {
		w := &rctx.Catalog[i]
		c, ok := counts[w.ID]
		if !ok || c <= 0 {
			continue
		}
		it := core.NewItem(w)
		it.Score = c
		it.PutLabel("trending", utils.ScoreLabel(c, "recall.trending"))
		out = append(out, it)
	}
	core.SortItems(out)
	return out, nil
}
