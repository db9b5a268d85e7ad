package core

import (
	"context"
	"time"
)

// Store 是快照重建阶段使用的 KV 存储：全量导出、审核黑名单都是单个 key。
// 打分过程不访问 Store。
type Store interface {
	// Name 返回后端名称（日志/监控）
	Name() string

	// Get 读取 key，不存在或已过期返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key，ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error
}

// RankingStore 额外保存已发布的榜单（热门 / 趋势），供其他进程或 recall.Hot 读取。
type RankingStore interface {
	Store

	// ReplaceRanking 整体替换一个榜单；读者要么看到旧榜单，要么看到新榜单
	ReplaceRanking(ctx context.Context, key string, ranking []Scored) error

	// TopRanking 按分数降序、ID 升序返回前 n 个，n <= 0 返回全部；榜单不存在返回空
	TopRanking(ctx context.Context, key string, n int) ([]Scored, error)
}

var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 判断是否为存储层的 key 不存在。
func IsStoreNotFound(err error) bool {
	de := GetDomainError(err)
	return de != nil && de.Module == ModuleStore && de.Code == ErrorCodeNotFound
}
