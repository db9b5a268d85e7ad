package recall

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// 合并策略
const (
	MergeWeighted = "weighted" // 按 Weights 加权求和（融合）
	MergeFirst    = "first"    // 按 ID 去重，保留第一个出现的
	MergePriority = "priority" // 相同 ID 保留优先级更高的（Sources 顺序）
	MergeUnion    = "union"    // 不去重
)

// ErrorHandler 在某个召回源失败时被调用，用于日志/监控。
type ErrorHandler func(source string, err error)

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
// 支持超时、限流、加权融合与优先级合并策略。
//
// 单个召回源失败不会中断其他召回源，它的贡献记为 0，并通过 OnError 上报。
// 合并总是按 Sources 顺序进行，与各召回源的完成顺序无关，因此结果是确定的。
type Fanout struct {
	Sources       []Source
	Weights       core.Weights  // MergeWeighted 使用，未配置的策略权重为 0
	Dedup         bool          // first / priority 模式下按 ID 去重
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string
	OnError       ErrorHandler
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := n.safeRecall(recallCtx, rctx, src)
			if err != nil {
				if n.OnError != nil {
					n.OnError(src.Name(), err)
				}
				return nil
			}

			// 记录召回来源 label，方便 explain / 观测
			for _, it := range items {
				it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
				it.PutLabel("recall_priority", utils.Label{Value: strconv.Itoa(i), Source: "recall"})
			}
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch n.MergeStrategy {
	case MergeWeighted:
		return n.mergeWeighted(results), nil
	case MergePriority:
		return n.mergeFirst(results), nil
	case MergeUnion:
		return flatten(results), nil
	default:
		return n.mergeFirst(results), nil
	}
}

// safeRecall 把召回源的 panic 转成错误，单个策略的缺陷不影响整个请求。
func (n *Fanout) safeRecall(ctx context.Context, rctx *core.RecommendContext, src Source) (items []*core.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.WrapDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
				"recall: source panicked", panicError{r})
		}
	}()
	return src.Recall(ctx, rctx)
}

// mergeWeighted 把每个策略的原始分乘以权重后按 ID 累加，结果按分数降序、ID 升序。
func (n *Fanout) mergeWeighted(results [][]*core.Item) []*core.Item {
	merged := make(map[int64]*core.Item)
	var out []*core.Item
	for i, items := range results {
		name := n.Sources[i].Name()
		w := n.Weights.Get(core.Strategy(name))
		for _, it := range items {
			if it == nil {
				continue
			}
			m, ok := merged[it.ID]
			if !ok {
				m = core.NewItem(it.ID)
				merged[it.ID] = m
				out = append(out, m)
			}
			m.AddScore(name, w*it.Score)
			for k, v := range it.Labels {
				m.PutLabel(k, v)
			}
		}
	}
	core.SortItems(out)
	return out
}

// mergeFirst 按 ID 去重，保留 Sources 顺序中第一个出现的，合并 labels。
// 因为结果按 Sources 顺序遍历，这同时也是按优先级合并。
func (n *Fanout) mergeFirst(results [][]*core.Item) []*core.Item {
	all := flatten(results)
	if !n.Dedup {
		return all
	}
	seen := make(map[int64]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

func flatten(results [][]*core.Item) []*core.Item {
	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}
	return all
}

type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	if s, ok := p.v.(string); ok {
		return s
	}
	return "panic"
}
