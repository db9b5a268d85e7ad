// Package filter 是融合之后的候选过滤：排除集合、审核黑名单、请求级 CEL 表达式。
package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Filter 判断一个候选是否应被移除。返回 true 表示移除。
// 出错时 FilterNode 保留该候选并通过 OnError 报告。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
