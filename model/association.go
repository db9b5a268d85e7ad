package model

import "github.com/rushteam/bookrec/core"

// Association 是对称的共现表：同一用户评过的任意两本书互相计数一次。
type Association struct {
	counts map[int64]map[int64]int
}

// FitAssociation 基于每个用户的历史（已去重）构建共现表。
func FitAssociation(h Histories) *Association {
	a := &Association{counts: make(map[int64]map[int64]int)}
	for _, items := range h {
		distinct := uniqueIDs(items)
		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				a.incr(distinct[i], distinct[j])
				a.incr(distinct[j], distinct[i])
			}
		}
	}
	return a
}

func (a *Association) incr(x, y int64) {
	row := a.counts[x]
	if row == nil {
		row = make(map[int64]int)
		a.counts[x] = row
	}
	row[y]++
}

func (a *Association) Name() string { return "association" }

// Count 返回两本书的共现次数。
func (a *Association) Count(x, y int64) int {
	return a.counts[x][y]
}

// Associated 返回与 seed 共现最多的 n 本书，分数为 count / 该 seed 的最大 count，
// 所以第一名恒为 1.0。没有共现记录时返回空列表。
func (a *Association) Associated(seed int64, n int) []core.Scored {
	row := a.counts[seed]
	if len(row) == 0 {
		return nil
	}
	maxCount := 0
	for _, c := range row {
		if c > maxCount {
			maxCount = c
		}
	}
	out := make([]core.Scored, 0, len(row))
	for id, c := range row {
		out = append(out, core.Scored{ID: id, Score: float64(c) / float64(maxCount)})
	}
	return topScored(out, n)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
