package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// FilterNode 依次应用 Filters，任一过滤器命中即移除候选，保持其余候选的相对顺序。
type FilterNode struct {
	Filters []Filter

	// OnError 过滤器出错时调用，该过滤器对这个候选视为未命中
	OnError func(filter string, err error)

	// OnDrop 在 Process 结束时按过滤器报告移除数量，只报告非零项
	OnDrop func(filter string, dropped int)
}

func (n *FilterNode) Name() string        { return "filter.node" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 {
		return items, nil
	}

	dropped := make([]int, len(n.Filters))
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if hit := n.match(ctx, rctx, item); hit >= 0 {
			dropped[hit]++
			continue
		}
		out = append(out, item)
	}

	if n.OnDrop != nil {
		for i, c := range dropped {
			if c > 0 {
				n.OnDrop(n.Filters[i].Name(), c)
			}
		}
	}
	return out, nil
}

// match 返回第一个命中的过滤器下标，未命中返回 -1。
func (n *FilterNode) match(ctx context.Context, rctx *core.RecommendContext, item *core.Item) int {
	for i, f := range n.Filters {
		hit, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			if n.OnError != nil {
				n.OnError(f.Name(), err)
			}
			continue
		}
		if hit {
			return i
		}
	}
	return -1
}
