package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述书目资格，表达式为 false 的物品被过滤。
//
// 示例：`book.rating_count >= 10 && !("horror" in book.genres)`
type ExprFilter struct {
	Expr string
}

// NewExprFilter 编译表达式，语法错误时返回 INVALID_INPUT。
func NewExprFilter(expr string) (*ExprFilter, error) {
	if _, err := dsl.Compile(expr); err != nil {
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "filter: invalid expression", err)
	}
	return &ExprFilter{Expr: expr}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	ok, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
