package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// CategoryRecall 按情境/性格标签查表，返回匹配类别中均分最高的书。
// 同一实现服务 context 与 quiz 两个策略，Name 取自模型。
type CategoryRecall struct {
	Model *model.CategoryScorer
	Tag   string

	// TopK 默认 20
	TopK int
}

func (r *CategoryRecall) Name() string {
	if r.Model == nil {
		return "category"
	}
	return r.Model.Name()
}

func (r *CategoryRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Model == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable, "recall: category table not loaded")
	}
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	return fromScored(rctx, r.Model.Lookup(r.Tag), topK), nil
}
