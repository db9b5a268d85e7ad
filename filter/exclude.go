package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// ExcludeFilter 过滤掉不在候选集合中的物品：已评分、请求显式排除、不在候选全集中的书。
// 召回源本身已按候选集合过滤，这里在融合之后再兜底一次。
type ExcludeFilter struct{}

func (f *ExcludeFilter) Name() string {
	return "filter.exclude"
}

func (f *ExcludeFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return !rctx.Allowed(item.ID), nil
}
