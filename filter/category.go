package filter

import (
	"context"
	"strings"

	"github.com/rushteam/winerec/core"
)

// AllowListFilter 只保留类别或风格在白名单中的酒款（大小写不敏感）。
// 两个列表都为空时不过滤。
type AllowListFilter struct {
	Categories []string
	Styles     []core.Style
}

func NewAllowListFilter(categories []string, styles []core.Style) *AllowListFilter {
	return &AllowListFilter{Categories: categories, Styles: styles}
}

func (f *AllowListFilter) Name() string {
	return "filter.allow_list"
}

func (f *AllowListFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if len(f.Categories) == 0 && len(f.Styles) == 0 {
		return false, nil
	}
	return !f.Match(item.Wine), nil
}

// Match 类别命中或风格命中即可。
func (f *AllowListFilter) Match(w *core.Wine) bool {
	if w == nil {
		return false
	}
	for _, c := range f.Categories {
		if strings.EqualFold(c, w.Category) {
			return true
		}
	}
	style := core.NormalizeStyle(string(w.Style))
	for _, s := range f.Styles {
		if core.NormalizeStyle(string(s)) == style {
			return true
		}
	}
	return false
}
