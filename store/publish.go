package store

import (
	"context"
	"math"

	"github.com/rushteam/bookrec/core"
)

// 榜单 key 后缀
const (
	RankingPopular  = "popular"
	RankingTrending = "trending"
)

// RankingKey 返回榜单的完整 key，例如 "bookrec:ranking:popular"。
func RankingKey(prefix, name string) string {
	if prefix == "" {
		prefix = "bookrec"
	}
	return prefix + ":ranking:" + name
}

// Publish 用 ranking 整体替换 key 上的榜单，recall.Hot 配置 Store + Key 后可读回。
// 非有限分数（NaN / ±Inf）的条目被丢弃。
func Publish(ctx context.Context, rs core.RankingStore, key string, ranking []core.Scored) error {
	clean := make([]core.Scored, 0, len(ranking))
	for _, s := range ranking {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			continue
		}
		clean = append(clean, core.Scored{ID: s.ID, Score: s.Score})
	}
	if err := rs.ReplaceRanking(ctx, key, clean); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: publish "+key, err)
	}
	return nil
}
