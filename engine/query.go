package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/mood"
)

// SimilarTo 返回与 itemID 内容最相似的 n 本书（不含自身与黑名单），n 为 0 时取默认值。
// itemID 不在目录中时返回空列表。
func (e *Engine) SimilarTo(_ context.Context, itemID int64, n int) ([]core.Scored, error) {
	start := time.Now()
	snap, err := e.holder.Load()
	if err != nil {
		return nil, err
	}
	if n, err = e.limit(n); err != nil {
		return nil, err
	}

	blocked := make(map[int64]struct{}, len(snap.Blacklist))
	for _, id := range snap.Blacklist {
		blocked[id] = struct{}{}
	}

	// 先取全部近邻再去掉黑名单，保证结果仍有 n 个
	neighbours, err := snap.Content.Similar(itemID, snap.Content.Len())
	if err != nil {
		if core.IsNotFound(err) {
			e.logger.Info().Int64("book_id", itemID).Err(err).Msg("similar: unknown book")
			metrics.ObserveRequest(modeSimilar, start, 0)
			return []core.Scored{}, nil
		}
		return nil, err
	}
	out := make([]core.Scored, 0, n)
	for _, s := range neighbours {
		if _, ok := blocked[s.ID]; ok {
			continue
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	metrics.ObserveRequest(modeSimilar, start, len(out))
	return out, nil
}

// MoodRecommend 在情绪目录上做余弦相似度检索。
// 过滤的国家在目录中不存在时记一条 info 日志并返回空列表。
func (e *Engine) MoodRecommend(_ context.Context, q mood.Query) ([]core.Scored, error) {
	start := time.Now()
	snap, err := e.holder.Load()
	if err != nil {
		return nil, err
	}
	if err := e.validate.Struct(q); err != nil {
		return nil, core.WrapDomainError(core.ModuleMood, core.ErrorCodeInvalidInput, "mood: invalid query", err)
	}
	if q.N, err = e.limit(q.N); err != nil {
		return nil, err
	}
	if q.Filters.Country != "" && !snap.Mood.HasCountry(q.Filters.Country) {
		e.logger.Info().Str("country", q.Filters.Country).Msg("mood: no books for country")
	}
	out := snap.Mood.Recommend(q)
	metrics.ObserveRequest(modeMood, start, len(out))
	return out, nil
}

// limit 补齐默认 N 并检查上限。
func (e *Engine) limit(n int) (int, error) {
	if n == 0 {
		return e.cfg.DefaultN, nil
	}
	if n < 0 || n > e.cfg.MaxN {
		return 0, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: invalid request",
			fmt.Errorf("n %d out of range [1,%d]", n, e.cfg.MaxN))
	}
	return n, nil
}
