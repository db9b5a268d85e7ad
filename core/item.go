package core

import (
	"sort"

	"github.com/rushteam/bookrec/pkg/utils"
)

// Item 是推荐链路中的统一承载结构：分数、各策略分项、书目元信息、标签。
// Labels 用于解释；Score 用于排序决策。
type Item struct {
	ID     int64
	Score  float64
	Scores map[string]float64 // 策略名 -> 加权后的贡献
	Book   *Book
	Labels map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:     id,
		Scores: make(map[string]float64),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// AddScore 把某个策略的贡献累加到总分上。
func (it *Item) AddScore(strategy string, v float64) {
	if it.Scores == nil {
		it.Scores = make(map[string]float64)
	}
	it.Scores[strategy] += v
	it.Score += v
}

// Genres 返回书目类别，没有书目信息时为空。
func (it *Item) Genres() []string {
	if it.Book == nil {
		return nil
	}
	return it.Book.Genres
}

// Scored 是对外输出的 (id, score) 对。
type Scored struct {
	ID      int64    `json:"id"`
	Score   float64  `json:"score"`
	Sources []string `json:"sources,omitempty"`
}

// ToScored 把 Item 转成输出结构，保留顺序。
func ToScored(items []*Item) []Scored {
	out := make([]Scored, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		s := Scored{ID: it.ID, Score: it.Score}
		if lbl, ok := it.Labels["recall_source"]; ok {
			s.Sources = utils.SplitValue(lbl)
		}
		out = append(out, s)
	}
	return out
}

// SortItems 按分数降序排序，分数相同时 ID 小的在前。
func SortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}

// SortScored 与 SortItems 的顺序规则一致。
func SortScored(s []Scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].ID < s[j].ID
	})
}

// TopScored 排序后截取前 n 个；n <= 0 时不截断。
func TopScored(s []Scored, n int) []Scored {
	SortScored(s)
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	return s
}
