package filter

import (
	"context"

	"github.com/rushteam/winerec/core"
)

// PreferenceFilter 按用户偏好做硬过滤：不喜欢的类别、低于最低评分、
// 价格在区间外的酒款都会被移除。价格未知的酒款不受价格区间约束。
type PreferenceFilter struct{}

func (f *PreferenceFilter) Name() string {
	return "filter.preference"
}

func (f *PreferenceFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.Preferences == nil {
		return false, nil
	}
	return !Admits(rctx.Preferences, item.Wine), nil
}

// Admits 判断酒款是否满足偏好的硬约束。
func Admits(prefs *core.PreferenceSet, w *core.Wine) bool {
	if w == nil {
		return false
	}
	if prefs == nil {
		return true
	}
	if prefs.DislikesCategory(w.Category) {
		return false
	}
	if w.Quality < prefs.MinQuality {
		return false
	}
	if w.HasPrice() && !prefs.PriceRange.Contains(w.PriceValue()) {
		return false
	}
	return true
}
