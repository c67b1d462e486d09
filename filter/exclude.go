package filter

import (
	"context"
	"slices"

	"github.com/rushteam/winerec/core"
)

// ExcludeFilter 过滤掉指定 ID 的酒款。
type ExcludeFilter struct {
	// ItemIDs 是固定排除的酒款 ID 列表
	ItemIDs []string

	// Param 从请求参数中读取额外排除的 ID（可选），例如相似推荐的锚点 "item_id"
	Param string
}

func NewExcludeFilter(itemIDs []string, param string) *ExcludeFilter {
	return &ExcludeFilter{ItemIDs: itemIDs, Param: param}
}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	id := item.ID()
	if slices.Contains(f.ItemIDs, id) {
		return true, nil
	}
	if f.Param != "" {
		if v := rctx.Param(f.Param); v != "" && v == id {
			return true, nil
		}
	}
	return false, nil
}
