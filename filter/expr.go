package filter

import (
	"context"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述"保留条件"，表达式为 false 的酒款被过滤。
//
// 示例：
//
//	f, _ := filter.NewExprFilter(`wine.country == "France" && wine.quality >= 90`)
type ExprFilter struct {
	expr *dsl.Expr
}

func NewExprFilter(expr string) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleView, core.ErrorCodeInvalidInput, "filter: bad expression", err)
	}
	return &ExprFilter{expr: e}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.expr.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
