package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
)

// Diversity 是按类别打散的 ReRank：每个类别最多保留 MaxPerCategory 个，
// 超出的酒款顺延到列表末尾（不丢弃），保持原有相对顺序。
type Diversity struct {
	// MaxPerCategory 每个类别在前段的上限，<= 0 时为 1
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))
	var overflow []*core.Item

	for _, it := range items {
		if it == nil {
			continue
		}
		cate := ""
		if it.Wine != nil {
			cate = strings.ToLower(it.Wine.Category)
		}
		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= limit {
			overflow = append(overflow, it)
			continue
		}
		seen[cate]++
		out = append(out, it)
	}

	return append(out, overflow...), nil
}
