package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉被下架/审核屏蔽的书。
// 黑名单在构建时一次性读入（见 StoreAdapter.GetBlacklist），打分过程中不访问存储。
type BlacklistFilter struct {
	ids map[int64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []int64) *BlacklistFilter {
	ids := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Len 返回黑名单大小。
func (f *BlacklistFilter) Len() int { return len(f.ids) }

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}
