package rerank

import (
	"context"
	"slices"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// Backfill 在候选不足 N 个时，用目录中评分最高、尚未出现的酒款补足，
// 结果中不会出现重复 ID。已有候选保持原顺序并去重。
type Backfill struct {
	N int
	// Filter 只有满足条件的酒款才会被用于补位（可选）
	Filter func(w *core.Wine) bool
}

func (n *Backfill) Name() string {
	return "rerank.backfill"
}

func (n *Backfill) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Backfill) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	seen := make(map[string]bool, len(items))
	out := make([]*core.Item, 0, max(n.N, len(items)))
	for _, it := range items {
		if it == nil || seen[it.ID()] {
			continue
		}
		seen[it.ID()] = true
		out = append(out, it)
	}
	if n.N <= 0 || len(out) >= n.N || rctx == nil {
		return out, nil
	}

	pool := make([]*core.Wine, 0, len(rctx.Catalog))
	for i := range rctx.Catalog {
		w := &rctx.Catalog[i]
		if seen[w.ID] || (n.Filter != nil && !n.Filter(w)) {
			continue
		}
		pool = append(pool, w)
	}
	slices.SortStableFunc(pool, ByQuality)

	for _, w := range pool {
		if len(out) >= n.N {
			break
		}
		it := core.NewItem(w)
		it.Score = w.Quality
		it.PutLabel("backfill", utils.Label{Value: "quality", Source: "rerank.backfill"})
		seen[w.ID] = true
		out = append(out, it)
	}
	return out, nil
}

// ByQuality 评分降序，同分按 ID 升序。
func ByQuality(a, b *core.Wine) int {
	switch {
	case a.Quality > b.Quality:
		return -1
	case a.Quality < b.Quality:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
