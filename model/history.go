package model

import (
	"sort"

	"github.com/rushteam/bookrec/core"
)

// Histories 是每个用户按时间排序的已评分书目（最近的在最后）。
type Histories map[int64][]int64

// BuildHistories 按 CreatedAt 排序，时间相同保持导出顺序；重复评分以最后一次为准。
func BuildHistories(ratings []core.Rating) Histories {
	rs := append([]core.Rating(nil), dedupRatings(ratings)...)
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
	h := make(Histories)
	for _, r := range rs {
		h[r.UserID] = append(h[r.UserID], r.BookID)
	}
	return h
}

// Of 返回用户历史；未知用户返回 nil。
func (h Histories) Of(userID int64) []int64 {
	return h[userID]
}
