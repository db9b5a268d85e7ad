// Package engine 是推荐引擎的入口：持有当前打分快照，把一次请求编排成
// 融合 → 过滤 → 截断 → 多样性重排 的 Pipeline。
//
// 典型用法：
//
//	eng, _ := engine.New(config.Default())
//	if _, err := eng.RetrainFrom(ctx, store.StaticExport(exp)); err != nil { ... }
//	items, err := eng.Recommend(ctx, engine.Request{UserID: 1, N: 10})
//
// Engine 可被多个 goroutine 并发使用；Retrain 构建出完整的新快照之后才原子替换，
// 正在执行的请求继续使用旧快照。
package engine

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/config"
	_ "github.com/rushteam/bookrec/config/builders"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/logging"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/snapshot"
	"github.com/rushteam/bookrec/store"
)

// Engine 是推荐引擎。
type Engine struct {
	cfg    config.EngineConfig
	model  config.ModelConfig
	logger zerolog.Logger

	holder  snapshot.Holder
	trainMu sync.Mutex

	// extra 插在过滤之后、截断之前，来自配置或 WithNodes
	extra []pipeline.Node

	// 黑名单：固定部分 + 每次 RetrainFrom 时从 Store 读取的部分
	blacklist      []int64
	blacklistStore core.Store
	blacklistKey   string

	// publisher 非空时，每次重建后发布热门/趋势榜
	publisher     core.RankingStore
	publishPrefix string

	validate *validator.Validate
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 替换默认的 logging.With("engine")。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNodes 追加自定义 Node，插在过滤之后、截断之前。
func WithNodes(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.extra = append(e.extra, nodes...) }
}

// WithBlacklist 设置固定黑名单，对所有快照生效。
func WithBlacklist(ids ...int64) Option {
	return func(e *Engine) { e.blacklist = append(e.blacklist, ids...) }
}

// WithBlacklistStore 每次 RetrainFrom 时从 s 的 key 读取黑名单。
func WithBlacklistStore(s core.Store, key string) Option {
	return func(e *Engine) {
		e.blacklistStore = s
		e.blacklistKey = key
	}
}

// WithPublisher 每次重建后把热门/趋势榜发布到 kv，key 见 store.RankingKey。
func WithPublisher(kv core.RankingStore, prefix string) Option {
	return func(e *Engine) {
		e.publisher = kv
		e.publishPrefix = prefix
	}
}

// New 创建引擎。cfg 为 nil 时使用 config.Default()；cfg.Pipeline 中的 Node 会被构建并追加。
// 新引擎没有快照，在第一次 Retrain 成功之前所有请求都返回 core.ErrNoSnapshot。
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nodes, err := cfg.Nodes()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "engine: build pipeline", err)
	}

	e := &Engine{
		cfg:      cfg.Engine,
		model:    cfg.Model,
		logger:   logging.With("engine"),
		extra:    nodes,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Snapshot 返回当前快照。
func (e *Engine) Snapshot() (*snapshot.Snapshot, error) {
	return e.holder.Load()
}

// Status 返回当前快照的概要信息。
func (e *Engine) Status() (snapshot.Stats, error) {
	snap, err := e.holder.Load()
	if err != nil {
		return snapshot.Stats{}, err
	}
	return snap.Stats(), nil
}

// Publish 把当前快照的热门榜与趋势榜写入 kv。
func (e *Engine) Publish(ctx context.Context, kv core.RankingStore, prefix string) error {
	snap, err := e.holder.Load()
	if err != nil {
		return err
	}
	return publish(ctx, kv, prefix, snap)
}

func publish(ctx context.Context, kv core.RankingStore, prefix string, snap *snapshot.Snapshot) error {
	if err := store.Publish(ctx, kv, store.RankingKey(prefix, store.RankingPopular), snap.Popularity.Overall()); err != nil {
		return err
	}
	return store.Publish(ctx, kv, store.RankingKey(prefix, store.RankingTrending), snap.Popularity.Trending())
}

// onScorerError 返回融合时的错误处理：未知种子/用户只记 info，其余记 warn，两者都计数。
// 出错的策略贡献记为 0，请求继续。
func (e *Engine) onScorerError(log zerolog.Logger) func(source string, err error) {
	return func(source string, err error) {
		reason := "error"
		switch {
		case core.IsNotFound(err):
			reason = "not_found"
			log.Info().Str("strategy", source).Err(err).Msg("scorer skipped: unknown entity")
		case core.IsUnavailable(err):
			reason = "unavailable"
			log.Warn().Str("strategy", source).Err(err).Msg("scorer unavailable")
		default:
			log.Warn().Str("strategy", source).Err(err).Msg("scorer failed")
		}
		metrics.ScorerFailures.WithLabelValues(source, reason).Inc()
	}
}
