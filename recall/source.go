package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Source 表示一个可复用的打分策略（热门/内容/协同/共现/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。Name 同时是融合权重的 key。
//
// Recall 返回的 Item.Score 是该策略的原始分；返回 NOT_FOUND 表示种子/用户不在快照中，
// 其他错误表示策略不可用。两种情况融合时该策略贡献都记为 0。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// fromScored 把模型输出转成 Item，只保留候选集合中的 ID，最多 n 个（n <= 0 不限）。
func fromScored(rctx *core.RecommendContext, scored []core.Scored, n int) []*core.Item {
	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		if !rctx.Allowed(s.ID) {
			continue
		}
		it := core.NewItem(s.ID)
		it.Score = s.Score
		out = append(out, it)
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// accumulate 把多个种子的结果按 ID 累加（不取平均），按首次出现顺序输出。
type accumulator struct {
	order  []int64
	scores map[int64]float64
}

func newAccumulator() *accumulator {
	return &accumulator{scores: make(map[int64]float64)}
}

func (a *accumulator) add(id int64, v float64) {
	if _, ok := a.scores[id]; !ok {
		a.order = append(a.order, id)
	}
	a.scores[id] += v
}

func (a *accumulator) items() []*core.Item {
	out := make([]*core.Item, 0, len(a.order))
	for _, id := range a.order {
		it := core.NewItem(id)
		it.Score = a.scores[id]
		out = append(out, it)
	}
	core.SortItems(out)
	return out
}

// seeds 返回种子：显式 SeedID 优先，否则取最近评分的 n 本。
func seeds(rctx *core.RecommendContext, n int) []int64 {
	if rctx.SeedID != 0 {
		return []int64{rctx.SeedID}
	}
	return rctx.User.LastN(n)
}
