package filter

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的数据源。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单：JSON 数组，元素可以是数字或数字字符串。
// key 不存在时返回空列表。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]int64, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: decode blacklist", err)
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		var id int64
		if err := json.Unmarshal(r, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
