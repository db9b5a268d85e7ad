package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢某本书，推荐文本上与它相似的其他书"
//
// 以用户最近评分的 Seeds 本书为种子，每个种子取 PerSeed 个 TF-IDF 近邻，
// 同一本书作为多个种子的近邻时分数累加（不取平均），越近、越多被命中的书分数越高。
type ContentRecall struct {
	Index *model.ContentIndex

	Seeds   int // 默认 5
	PerSeed int // 默认 20
}

func (r *ContentRecall) Name() string {
	return string(core.StrategyContent)
}

func (r *ContentRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: content index not loaded")
	}
	nSeeds := r.Seeds
	if nSeeds <= 0 {
		nSeeds = 5
	}
	perSeed := r.PerSeed
	if perSeed <= 0 {
		perSeed = 20
	}

	acc := newAccumulator()
	var lastErr error
	known := 0
	for _, seed := range seeds(rctx, nSeeds) {
		neighbours, err := r.Index.Similar(seed, perSeed)
		if err != nil {
			lastErr = err
			continue
		}
		known++
		for _, s := range neighbours {
			if rctx.Allowed(s.ID) {
				acc.add(s.ID, s.Score)
			}
		}
	}
	if known == 0 && lastErr != nil {
		return nil, lastErr
	}
	return acc.items(), nil
}
