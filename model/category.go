package model

import (
	"sort"
	"strings"

	"github.com/rushteam/bookrec/core"
)

// TagTable 把情境/性格标签映射到一组类别关键词。
type TagTable struct {
	Name     string
	Tags     map[string][]string
	Fallback []string // 未知标签使用的类别
}

// ContextTable 是时段/场景标签表。
func ContextTable() TagTable {
	return TagTable{
		Name: "context",
		Tags: map[string][]string{
			"morning":   {"self-help", "business", "productivity"},
			"afternoon": {"fiction", "mystery", "thriller"},
			"evening":   {"romance", "fantasy", "sci-fi"},
			"night":     {"horror", "mystery", "literary"},
			"weekend":   {"adventure", "travel", "biography"},
			"workday":   {"business", "self-help", "technical"},
		},
		Fallback: []string{"fiction", "general"},
	}
}

// PersonalityTable 是性格问卷结果表。
func PersonalityTable() TagTable {
	return TagTable{
		Name: "quiz",
		Tags: map[string][]string{
			"adventurous":  {"adventure", "travel", "thriller", "fantasy"},
			"intellectual": {"science", "philosophy", "history", "technical"},
			"creative":     {"art", "poetry", "literary", "biography"},
			"romantic":     {"romance", "drama", "contemporary"},
			"analytical":   {"mystery", "sci-fi", "business", "technical"},
		},
		Fallback: []string{"fiction"},
	}
}

// CategoryScorer 预先为表中每个标签算好候选列表：
// 类别与关键词有交集的书目，分数为 均分 / 5。
type CategoryScorer struct {
	name     string
	byTag    map[string][]core.Scored
	fallback []core.Scored
}

// FitCategory 基于目录构建标签 -> 排序列表。类别按整词精确匹配："fiction" 不命中 "nonfiction"。
func FitCategory(books []core.Book, table TagTable) *CategoryScorer {
	c := &CategoryScorer{
		name:  table.Name,
		byTag: make(map[string][]core.Scored, len(table.Tags)),
	}
	for tag, kws := range table.Tags {
		c.byTag[tag] = matchCategory(books, kws)
	}
	c.fallback = matchCategory(books, table.Fallback)
	return c
}

func matchCategory(books []core.Book, keywords []string) []core.Scored {
	kws := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kws[kw] = struct{}{}
	}
	var out []core.Scored
	for _, b := range books {
		if !genresMatch(b.Genres, kws) {
			continue
		}
		out = append(out, core.Scored{ID: b.ID, Score: b.AverageRating / core.RatingScale})
	}
	return topScored(out, 0)
}

func genresMatch(genres []string, keywords map[string]struct{}) bool {
	for _, g := range genres {
		if _, ok := keywords[strings.ToLower(g)]; ok {
			return true
		}
	}
	return false
}

func (c *CategoryScorer) Name() string { return c.name }

// Known 判断标签是否在表中。
func (c *CategoryScorer) Known(tag string) bool {
	_, ok := c.byTag[normalizeTag(tag)]
	return ok
}

// Tags 返回表中所有标签（排序后）。
func (c *CategoryScorer) Tags() []string {
	out := make([]string, 0, len(c.byTag))
	for t := range c.byTag {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Lookup 返回标签对应的列表（只读）；未知标签回退到默认类别。
func (c *CategoryScorer) Lookup(tag string) []core.Scored {
	if s, ok := c.byTag[normalizeTag(tag)]; ok {
		return s
	}
	return c.fallback
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
