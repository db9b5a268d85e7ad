package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/snapshot"
)

// Request 是一次推荐请求。
type Request struct {
	RequestID string `json:"request_id,omitempty"`
	UserID    int64  `json:"user_id"`

	// RatedIDs 是用户已评分的书，最近的在最后；为空时取快照中的评分历史
	RatedIDs []int64 `json:"rated_ids,omitempty" validate:"dive,gt=0"`
	// ExcludeIDs 是额外排除的书
	ExcludeIDs []int64 `json:"exclude_ids,omitempty" validate:"dive,gt=0"`
	// CandidateIDs 是候选全集，为空时为整个目录
	CandidateIDs []int64 `json:"candidate_ids,omitempty" validate:"dive,gt=0"`

	// N 默认 10，不能超过配置的上限
	N int `json:"n" validate:"gte=0"`

	Context     string `json:"context,omitempty" validate:"max=64"`
	Personality string `json:"personality,omitempty" validate:"max=64"`

	// Strategy 非空时进入单策略模式
	Strategy string `json:"strategy,omitempty"`
	// SeedID 单策略模式下 content / association 的种子
	SeedID int64 `json:"seed_id,omitempty" validate:"gte=0"`

	// Diversity 为 nil 时开启多样性重排
	Diversity *bool `json:"diversity,omitempty"`

	// Filter 是 CEL 资格表达式，例如 `book.rating_count >= 10`
	Filter string `json:"filter,omitempty"`
}

func (r *Request) diversity() bool {
	return r.Diversity == nil || *r.Diversity
}

// prepare 校验请求并补齐默认值。
func (e *Engine) prepare(req Request) (Request, error) {
	if err := e.validate.Struct(req); err != nil {
		return req, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: invalid request", err)
	}
	if req.N == 0 {
		req.N = e.cfg.DefaultN
	}
	if req.N > e.cfg.MaxN {
		return req, core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: invalid request",
			fmt.Errorf("n %d exceeds max %d", req.N, e.cfg.MaxN))
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

// newContext 构建请求上下文：排除集合 = 已评分 ∪ 显式排除；候选 = 请求候选（或全目录）中目录已知且未被排除的书。
func newContext(snap *snapshot.Snapshot, req Request) *core.RecommendContext {
	rated := req.RatedIDs
	if len(rated) == 0 {
		rated = snap.History(req.UserID)
	}

	excluded := make(map[int64]struct{}, len(rated)+len(req.ExcludeIDs))
	for _, id := range rated {
		excluded[id] = struct{}{}
	}
	for _, id := range req.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	user := core.NewUserProfile(req.UserID, rated)
	user.ContextTag = req.Context
	user.Personality = req.Personality

	rctx := &core.RecommendContext{
		UserID:    req.UserID,
		RequestID: req.RequestID,
		User:      user,
		SeedID:    req.SeedID,
		Params:    map[string]any{},
	}
	if req.Filter != "" {
		rctx.Params["filter"] = req.Filter
	}

	candidates := req.CandidateIDs
	if len(candidates) == 0 {
		candidates = snap.BookIDs()
	} else {
		known := make([]int64, 0, len(candidates))
		for _, id := range candidates {
			if _, ok := snap.Book(id); ok {
				known = append(known, id)
			}
		}
		candidates = known
	}
	rctx.SetCandidates(candidates, excluded)
	return rctx
}
