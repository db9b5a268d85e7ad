package rerank

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// TopNNode 截取前 N 个候选。融合路径上出现两次：先取 3N 个作为多样性重排的候选池，
// 关闭多样性时再直接截到 N。
//
// Sort 为 true 时先按分数降序、ID 升序排序；否则假定输入已有序。
type TopNNode struct {
	// N <= 0 表示不截断
	N    int
	Sort bool
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Sort {
		core.SortItems(items)
	}
	if n.N > 0 && len(items) > n.N {
		items = items[:n.N]
	}
	return items, nil
}
