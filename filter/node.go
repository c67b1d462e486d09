package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// FilterNode 依次执行 Filters，任意一个命中即剔除该酒款。
//
// 被剔除的酒款打上 filtered 标签（Source 为命中的过滤器名），便于 explain。
// 单个过滤器出错时视为未命中，不会中断整个视图。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	kept := make([]*core.Item, 0, len(items))
	rejected := make(map[string]int, len(n.Filters))
	for _, item := range items {
		if item == nil || item.Wine == nil {
			continue
		}
		if by := n.reject(ctx, rctx, item); by != "" {
			rejected[by]++
			item.PutLabel("filtered", utils.Label{Value: "true", Source: by})
			continue
		}
		kept = append(kept, item)
	}

	if e := n.Logger.Debug(); e.Enabled() {
		d := zerolog.Dict()
		for name, c := range rejected {
			d.Int(name, c)
		}
		e.Int("in", len(items)).Int("kept", len(kept)).Dict("rejected", d).Msg("filter done")
	}
	return kept, nil
}

// reject 返回第一个命中的过滤器名，未命中返回空串。
func (n *FilterNode) reject(ctx context.Context, rctx *core.RecommendContext, item *core.Item) string {
	for _, f := range n.Filters {
		hit, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			n.Logger.Debug().Err(err).Str("filter", f.Name()).Str("item", item.ID()).Msg("filter failed, item kept")
			continue
		}
		if hit {
			return f.Name()
		}
	}
	return ""
}
