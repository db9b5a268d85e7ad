// Package model 是打分模型层：每个模型由一次全量导出拟合得到，拟合后只读。
//
// 模型之间互不依赖，全部由 snapshot 包在构建阶段组装，召回源（recall 包）只读取它们。
package model

import (
	"sort"

	"github.com/rushteam/bookrec/core"
)

// ScoreModel 是单个可解释模型的最小抽象：给出某个实体的原始分数。
// ok 为 false 表示模型对该实体没有信号。
type ScoreModel interface {
	Name() string
	Score(id int64) (score float64, ok bool)
}

var (
	_ ScoreModel = (*Popularity)(nil)
	_ ScoreModel = (*BiasModel)(nil)
	_ ScoreModel = (*Demographic)(nil)
)

// dedupRatings 对同一 (user, book) 只保留导出顺序中最后一次评分。
func dedupRatings(ratings []core.Rating) []core.Rating {
	type key struct{ u, b int64 }
	last := make(map[key]int, len(ratings))
	for i, r := range ratings {
		last[key{r.UserID, r.BookID}] = i
	}
	if len(last) == len(ratings) {
		return ratings
	}
	out := make([]core.Rating, 0, len(last))
	for i, r := range ratings {
		if last[key{r.UserID, r.BookID}] == i {
			out = append(out, r)
		}
	}
	return out
}

// topScored 按分数降序、ID 升序排序并截断，n <= 0 不截断。
func topScored(s []core.Scored, n int) []core.Scored {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].ID < s[j].ID
	})
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	return s
}
