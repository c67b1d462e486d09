package recall

import (
	"context"
	"time"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// UserHistory 召回用户自己有过行为的酒款（例如“再次购买”）。
// 按最近一次行为时间倒序，Score 为行为次数。
type UserHistory struct {
	// Kinds 参与召回的行为类型，为空时使用所有正向转化行为
	Kinds []core.InteractionKind

	// TimeWindow 时间窗口，0 表示考虑所有历史
	TimeWindow time.Duration

	// TopK 返回 TopK 个物品，0 表示不限
	TopK int
}

func (r *UserHistory) Name() string        { return "recall.user_history" }
func (r *UserHistory) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserHistory) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *UserHistory) accept(kind core.InteractionKind) bool {
	if len(r.Kinds) == 0 {
		return kind.IsPositive()
	}
	for _, k := range r.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *UserHistory) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Interactions) == 0 {
		return nil, nil
	}
	var from int64
	if r.TimeWindow > 0 {
		now := rctx.Now
		if now.IsZero() {
			now = time.Now()
		}
		from = now.Add(-r.TimeWindow).UnixMilli()
	}

	index := make(map[string]int, len(rctx.Catalog))
	for i := range rctx.Catalog {
		index[rctx.Catalog[i].ID] = i
	}

	// 倒序遍历，第一次遇到即为最近一次行为
	byID := make(map[string]*core.Item)
	var out []*core.Item
	for i := len(rctx.Interactions) - 1; i >= 0; i-- {
		rec := rctx.Interactions[i]
		if rec.Timestamp < from || !r.accept(rec.Kind) {
			continue
		}
		if it, ok := byID[rec.ItemID]; ok {
			it.Score++
			continue
		}
		idx, ok := index[rec.ItemID]
		if !ok {
			continue
		}
		it := core.NewItem(&rctx.Catalog[idx])
		it.Score = 1
		it.PutLabel("last_interaction", utils.Label{Value: string(rec.Kind), Source: "recall.user_history"})
		byID[rec.ItemID] = it
		out = append(out, it)
	}
	if r.TopK > 0 && len(out) > r.TopK {
		out = out[:r.TopK]
	}
	return out, nil
}
