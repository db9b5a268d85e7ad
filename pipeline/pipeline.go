package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/bookrec/core"
)

// Pipeline 是一次推荐的 Node 链：融合 → 书目信息 → 过滤 → 截断 → 重排。
// Pipeline 按请求构建，Node 之间只通过 items 和 rctx 传递数据。
type Pipeline struct {
	Nodes []Node

	// Observe 在每个 Node 结束后调用，in / out 为前后的物品数量
	Observe func(node Node, in, out int, elapsed time.Duration, err error)
}

// Run 依次执行各 Node。ctx 已取消时不再进入下一个 Node；
// 返回的错误带上 Node 名称，可用 errors.Is / core.GetDomainError 取回原始错误。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}

		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if p.Observe != nil {
			p.Observe(node, len(cur), len(next), time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", node.Kind(), node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
