package recall

import (
	"context"
	"math"
	"strings"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// 相似度各分量的权重
const (
	simCategoryWeight = 3.0
	simRegionWeight   = 2.0
	simPriceWeight    = 1.5
	simQualityWeight  = 1.5
)

// Similarity 计算两款酒的相似度，对称，没有固定上界。
//
//	+3   同类别
//	+2   同产区
//	+1.5 × (1 - |pa-pb| / max(pa,pb))   任一价格未知时为 0
//	+1.5 × (1 - |qa-qb| / 100)
func Similarity(a, b *core.Wine) float64 {
	var s float64
	if a.Category != "" && strings.EqualFold(a.Category, b.Category) {
		s += simCategoryWeight
	}
	if a.Region != "" && strings.EqualFold(a.Region, b.Region) {
		s += simRegionWeight
	}
	s += simPriceWeight * priceCloseness(a, b)
	s += simQualityWeight * (1 - math.Abs(a.Quality-b.Quality)/100)
	return s
}

func priceCloseness(a, b *core.Wine) float64 {
	if !a.HasPrice() || !b.HasPrice() {
		return 0
	}
	pa, pb := a.PriceValue(), b.PriceValue()
	denom := math.Max(pa, pb)
	if denom <= 0 {
		// 两个都是 0 视为完全相同
		if pa == pb {
			return 1
		}
		return 0
	}
	return 1 - math.Abs(pa-pb)/denom
}

// FindSimilar 返回与 src 最相似的至多 limit 款酒（不含 src 本身），
// 按相似度降序，同分按评分降序、再按 ID。limit <= 0 表示不限。
func FindSimilar(src *core.Wine, catalog []core.Wine, limit int) []*core.Item {
	if src == nil {
		return nil
	}
	out := make([]*core.Item, 0, len(catalog))
	for i := range catalog {
		w := &catalog[i]
		if w.ID == src.ID {
			continue
		}
		it := core.NewItem(w)
		it.Score = Similarity(src, w)
		it.PutLabel("similarity", utils.ScoreLabel(it.Score, "recall.similar"))
		out = append(out, it)
	}
	core.SortItems(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SimilarRecall 以请求参数中的酒款为锚点召回相似酒款。
// 锚点不在目录中时返回空列表。
type SimilarRecall struct {
	// Param 锚点 ID 所在的请求参数名，默认 "item_id"
	Param string
	// TopK 0 表示全部返回，由后续 TopN 截断
	TopK int
}

func (r *SimilarRecall) Name() string        { return "recall.similar" }
func (r *SimilarRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *SimilarRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *SimilarRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	param := r.Param
	if param == "" {
		param = "item_id"
	}
	id := rctx.Param(param)
	for i := range rctx.Catalog {
		if rctx.Catalog[i].ID == id {
			return FindSimilar(&rctx.Catalog[i], rctx.Catalog, r.TopK), nil
		}
	}
	return nil, nil
}
