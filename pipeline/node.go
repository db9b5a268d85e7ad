package pipeline

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Kind 标记 Node 所处阶段，用作指标 label。
type Kind string

const (
	KindRecall      Kind = "recall"      // 融合打分，产生候选
	KindFilter      Kind = "filter"      // 排除、黑名单、表达式过滤
	KindReRank      Kind = "rerank"      // 截断、多样性重排
	KindPostProcess Kind = "postprocess" // 补充书目信息等
)

// Node 是 Pipeline 的单元："输入 items → 输出 items"。
// 融合节点忽略输入直接产生候选；其余节点只删除、重排或修饰输入。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeFunc 把函数包装成 Node，用于一次性的轻量节点。
type NodeFunc struct {
	NodeName string
	NodeKind Kind
	Fn       func(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error)
}

func (f NodeFunc) Name() string { return f.NodeName }
func (f NodeFunc) Kind() Kind   { return f.NodeKind }

func (f NodeFunc) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return f.Fn(ctx, rctx, items)
}
