package engine

import (
	"context"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/snapshot"
	"github.com/rushteam/bookrec/store"
)

// Retrain 从一次全量导出构建新快照并原子替换当前快照。
//
// 同一时刻只有一次重建；构建失败或 ctx 取消时当前快照保持不变。
// 对同一份导出重复调用得到打分完全相同的快照（只有 ID 与版本号不同）。
func (e *Engine) Retrain(ctx context.Context, exp *core.Export) (*snapshot.Snapshot, error) {
	return e.retrain(ctx, exp, e.blacklist)
}

// RetrainFrom 从 src 读取导出后重建；配置了 WithBlacklistStore 时同时刷新黑名单。
func (e *Engine) RetrainFrom(ctx context.Context, src store.ExportSource) (*snapshot.Snapshot, error) {
	exp, err := src.LoadExport(ctx)
	if err != nil {
		metrics.RetrainTotal.WithLabelValues("failure").Inc()
		e.logger.Error().Err(err).Msg("retrain: load export failed")
		return nil, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "engine: load export", err)
	}

	blacklist := e.blacklist
	if e.blacklistStore != nil && e.blacklistKey != "" {
		ids, err := filter.NewStoreAdapter(e.blacklistStore).GetBlacklist(ctx, e.blacklistKey)
		if err != nil {
			// 黑名单读不到不阻塞重建，沿用固定黑名单
			e.logger.Warn().Str("key", e.blacklistKey).Err(err).Msg("retrain: load blacklist failed")
		} else {
			blacklist = append(append([]int64(nil), e.blacklist...), ids...)
		}
	}
	return e.retrain(ctx, exp, blacklist)
}

func (e *Engine) retrain(ctx context.Context, exp *core.Export, blacklist []int64) (snap *snapshot.Snapshot, err error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	start := time.Now()
	defer func() { metrics.ObserveRetrain(start, err) }()

	opts := snapshot.Options{
		Version:     e.holder.NextVersion(),
		MaxFeatures: e.model.MaxFeatures,
		Popularity:  e.model.PopularityConfig(),
		ProfileSize: e.model.ProfileSize,
		Blacklist:   blacklist,
	}
	e.logger.Info().Uint64("version", opts.Version).Msg("retrain started")

	snap, err = snapshot.Build(ctx, exp, opts)
	if err != nil {
		e.logger.Error().Uint64("version", opts.Version).Err(err).Msg("retrain failed, keeping current snapshot")
		return nil, err
	}
	e.holder.Swap(snap)

	stats := snap.Stats()
	metrics.SnapshotVersion.Set(float64(stats.Version))
	metrics.SnapshotSize.WithLabelValues("books").Set(float64(stats.Books))
	metrics.SnapshotSize.WithLabelValues("ratings").Set(float64(stats.Ratings))
	metrics.SnapshotSize.WithLabelValues("users").Set(float64(stats.Users))
	metrics.SnapshotSize.WithLabelValues("mood_books").Set(float64(stats.MoodBooks))

	e.logger.Info().
		Str("snapshot_id", stats.ID).
		Uint64("version", stats.Version).
		Int("books", stats.Books).
		Int("ratings", stats.Ratings).
		Int("users", stats.Users).
		Int("vocab", stats.Vocab).
		Dur("duration", time.Since(start)).
		Msg("retrain finished")

	if e.publisher != nil {
		if err := publish(ctx, e.publisher, e.publishPrefix, snap); err != nil {
			e.logger.Warn().Err(err).Msg("retrain: publish rankings failed")
		}
	}
	return snap, nil
}
