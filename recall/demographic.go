package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// DemographicRecall 使用唯一的默认画像打分。
//
// 融合模式（ProfileOnly=false）：每个候选都打分，画像内为其均分，画像外为 2.5。
// 单策略模式（ProfileOnly=true）：只返回画像内的书。
type DemographicRecall struct {
	Model *model.Demographic

	Normalize   bool
	ProfileOnly bool
}

func (r *DemographicRecall) Name() string {
	return string(core.StrategyDemographic)
}

func (r *DemographicRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: demographic profile not loaded")
	}

	scale := 1.0
	if r.Normalize {
		scale = core.RatingScale
	}

	if r.ProfileOnly {
		items := fromScored(rctx, r.Model.Profile(model.DefaultProfile), 0)
		for _, it := range items {
			it.Score /= scale
		}
		return items, nil
	}

	candidates := rctx.Candidates()
	out := make([]*core.Item, 0, len(candidates))
	for _, id := range candidates {
		s, _ := r.Model.Score(id)
		it := core.NewItem(id)
		it.Score = s / scale
		out = append(out, it)
	}
	core.SortItems(out)
	return out, nil
}
