package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/bookrec/core"
)

// RedisStore 是 Redis 实现的 RankingStore。
// 普通 key 存放全量导出与审核黑名单；榜单存为有序集合，member 为书 ID 的十进制字符串。
type RedisStore struct {
	client *redis.Client
}

// RedisOptions 是 RedisStore 的连接参数。
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore 建立连接并 PING 一次，连不上返回 UNAVAILABLE。
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: redis ping", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// ReplaceRanking 在 MULTI/EXEC 中先 DEL 再 ZADD。
func (r *RedisStore) ReplaceRanking(ctx context.Context, key string, ranking []core.Scored) error {
	zs := make([]redis.Z, 0, len(ranking))
	for _, s := range ranking {
		zs = append(zs, redis.Z{Score: s.Score, Member: strconv.FormatInt(s.ID, 10)})
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(zs) > 0 {
			pipe.ZAdd(ctx, key, zs...)
		}
		return nil
	})
	return err
}

// TopRanking 读取整个有序集合后重新排序：Redis 对同分 member 按字典序倒排，与 ID 升序不一致。
func (r *RedisStore) TopRanking(ctx context.Context, key string, n int) ([]core.Scored, error) {
	zs, err := r.client.ZRevRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Scored, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, core.Scored{ID: id, Score: z.Score})
	}
	return core.TopScored(out, n), nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.RankingStore = (*RedisStore)(nil)
