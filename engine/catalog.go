package engine

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/snapshot"
)

// catalog 给每个候选挂上书目信息，目录中不存在的候选被丢弃。
// 多样性重排（类别、评分数）和表达式过滤都依赖它。
func catalog(snap *snapshot.Snapshot) pipeline.Node {
	return pipeline.NodeFunc{
		NodeName: "engine.catalog",
		NodeKind: pipeline.KindPostProcess,
		Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
			out := items[:0]
			for _, it := range items {
				if it == nil {
					continue
				}
				b, ok := snap.Book(it.ID)
				if !ok {
					continue
				}
				it.Book = b
				out = append(out, it)
			}
			return out, nil
		},
	}
}
