package core

import "github.com/rushteam/bookrec/pkg/utils"

// RecommendContext 承载用户/请求信息，贯穿整个 Pipeline 透传。
// 构造完成后只读，多个召回源并发读取是安全的。
type RecommendContext struct {
	UserID    int64
	RequestID string

	User *UserProfile

	// SeedID 仅在单策略模式下使用（content / association 的种子书目）
	SeedID int64

	// Labels 是用户级标签，例如 cold_start
	Labels map[string]utils.Label

	// Params 请求级参数，例如 filter 表达式
	Params map[string]any

	candidates []int64
	allowed    map[int64]struct{}
}

// SetCandidates 设置候选集合。ids 中已被排除的会被剔除，结果保持传入顺序。
func (rctx *RecommendContext) SetCandidates(ids []int64, excluded map[int64]struct{}) {
	rctx.candidates = make([]int64, 0, len(ids))
	rctx.allowed = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := excluded[id]; ok {
			continue
		}
		if _, dup := rctx.allowed[id]; dup {
			continue
		}
		rctx.allowed[id] = struct{}{}
		rctx.candidates = append(rctx.candidates, id)
	}
}

// Candidates 返回候选 ID 列表。
func (rctx *RecommendContext) Candidates() []int64 {
	return rctx.candidates
}

// Allowed 判断 id 是否在候选集合中。未设置候选集合时全部允许。
func (rctx *RecommendContext) Allowed(id int64) bool {
	if rctx == nil || rctx.allowed == nil {
		return true
	}
	_, ok := rctx.allowed[id]
	return ok
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
