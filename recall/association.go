package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// AssociationRecall 是共现召回源："评过这本书的人也评过"。
// 以最近评分的 Seeds 本书为种子，各取 PerSeed 个共现书目，分数累加。
type AssociationRecall struct {
	Model *model.Association

	Seeds   int // 默认 3
	PerSeed int // 默认 15
}

func (r *AssociationRecall) Name() string {
	return string(core.StrategyAssociation)
}

func (r *AssociationRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: association model not loaded")
	}
	nSeeds := r.Seeds
	if nSeeds <= 0 {
		nSeeds = 3
	}
	perSeed := r.PerSeed
	if perSeed <= 0 {
		perSeed = 15
	}

	acc := newAccumulator()
	for _, seed := range seeds(rctx, nSeeds) {
		for _, s := range r.Model.Associated(seed, perSeed) {
			if rctx.Allowed(s.ID) {
				acc.add(s.ID, s.Score)
			}
		}
	}
	return acc.items(), nil
}
