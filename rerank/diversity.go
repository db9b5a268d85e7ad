package rerank

import (
	"context"
	"math"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// 默认权重
const (
	DefaultDiversityWeight = 0.3
	DefaultNoveltyWeight   = 0.2
	DefaultPopularityCap   = 100
)

// Diversity 是贪心的多样性重排（不是排序）：每一步在剩余候选中选综合分最高的一个。
//
//	combined = base
//	         + DiversityWeight × (1 − |候选类别 ∩ 已选类别| / max(|候选类别|,1))
//	         + NoveltyWeight   × (1 − min(评分数 / PopularityCap, 1))
//
// 选中的物品以 combined 作为新分数输出，其类别并入已选集合；综合分相同时 ID 小的胜出。
// 复杂度 O(N·K)，不是全局最优，但对固定输入是确定的。
// 类别与评分数来自 Item.Book，没有书目信息的候选视为无类别、评分数为 0。
type Diversity struct {
	// N 输出数量，<= 0 时输出全部候选
	N int

	DiversityWeight float64
	NoveltyWeight   float64
	PopularityCap   float64
}

// NewDiversity 使用默认权重创建重排节点。
func NewDiversity(n int) *Diversity {
	return &Diversity{
		N:               n,
		DiversityWeight: DefaultDiversityWeight,
		NoveltyWeight:   DefaultNoveltyWeight,
		PopularityCap:   DefaultPopularityCap,
	}
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	pool := make([]*core.Item, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		pool = append(pool, it)
	}

	limit := n.N
	if limit <= 0 || limit > len(pool) {
		limit = len(pool)
	}

	selected := make(map[string]struct{})
	out := make([]*core.Item, 0, limit)
	for len(out) < limit {
		best, bestScore := -1, math.Inf(-1)
		for i, it := range pool {
			c := n.combined(it, selected)
			if best < 0 || c > bestScore || (c == bestScore && it.ID < pool[best].ID) {
				best, bestScore = i, c
			}
		}

		pick := pool[best]
		pool = append(pool[:best], pool[best+1:]...)
		for _, g := range pick.Genres() {
			selected[g] = struct{}{}
		}
		if pick.Scores == nil {
			pick.Scores = make(map[string]float64)
		}
		pick.Scores["diversity"] = bestScore - pick.Score
		pick.Score = bestScore
		out = append(out, pick)
	}
	return out, nil
}

func (n *Diversity) combined(it *core.Item, selected map[string]struct{}) float64 {
	genres := make(map[string]struct{}, len(it.Genres()))
	for _, g := range it.Genres() {
		genres[g] = struct{}{}
	}
	overlap := 0
	for g := range genres {
		if _, ok := selected[g]; ok {
			overlap++
		}
	}
	denom := len(genres)
	if denom < 1 {
		denom = 1
	}
	diversity := 1 - float64(overlap)/float64(denom)

	popCap := n.PopularityCap
	if popCap <= 0 {
		popCap = DefaultPopularityCap
	}
	count := 0.0
	if it.Book != nil {
		count = float64(it.Book.RatingCount)
	}
	novelty := 1 - math.Min(count/popCap, 1)

	return it.Score + n.DiversityWeight*diversity + n.NoveltyWeight*novelty
}
