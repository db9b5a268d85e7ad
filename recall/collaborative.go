package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// CollaborativeRecall 用偏置模型为每个候选预测评分。
//
// 注意：用户偏置对该用户的所有候选是常数，不改变排序，只改变预测值。
type CollaborativeRecall struct {
	Model *model.BiasModel

	// Normalize 为 true 时输出 预测分 / 5（融合时使用），否则输出 [1,5] 的预测评分
	Normalize bool

	// RequireUser 为 true 时，快照中没有该用户的评分返回 NOT_FOUND
	RequireUser bool
}

func (r *CollaborativeRecall) Name() string {
	return string(core.StrategyCollaborative)
}

func (r *CollaborativeRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: bias model not loaded")
	}
	if r.RequireUser && !r.Model.HasUser(rctx.UserID) {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeNotFound,
			"collaborative: unknown user", fmt.Errorf("user %d", rctx.UserID))
	}

	candidates := rctx.Candidates()
	out := make([]*core.Item, 0, len(candidates))
	for _, id := range candidates {
		it := core.NewItem(id)
		it.Score = r.Model.Predict(rctx.UserID, id)
		if r.Normalize {
			it.Score /= core.RatingScale
		}
		out = append(out, it)
	}
	core.SortItems(out)
	return out, nil
}
