package model

import (
	"fmt"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/vec"
)

// ContentIndex 是全目录的 TF-IDF 向量索引，使用构建时固定的词表。
type ContentIndex struct {
	ids     []int64
	vectors []vec.SparseVector
	pos     map[int64]int
	vocab   int
}

// FitContent 以 Book.Text() 为语料拟合词表并向量化全部书目。
func FitContent(books []core.Book, maxFeatures int) *ContentIndex {
	docs := make([]string, len(books))
	for i := range books {
		docs[i] = books[i].Text()
	}
	v := vec.FitTFIDF(docs, maxFeatures)

	idx := &ContentIndex{
		ids:     make([]int64, len(books)),
		vectors: make([]vec.SparseVector, len(books)),
		pos:     make(map[int64]int, len(books)),
		vocab:   v.VocabSize(),
	}
	for i, b := range books {
		idx.ids[i] = b.ID
		idx.vectors[i] = v.Transform(docs[i])
		idx.pos[b.ID] = i
	}
	return idx
}

func (c *ContentIndex) Name() string { return "content" }

// Len 返回索引中的书目数。
func (c *ContentIndex) Len() int { return len(c.ids) }

// VocabSize 返回词表大小。
func (c *ContentIndex) VocabSize() int { return c.vocab }

// Has 判断书目是否在索引中。
func (c *ContentIndex) Has(id int64) bool {
	_, ok := c.pos[id]
	return ok
}

// Similarity 返回两本书的余弦相似度；任一未知时 ok 为 false。
func (c *ContentIndex) Similarity(a, b int64) (float64, bool) {
	ia, okA := c.pos[a]
	ib, okB := c.pos[b]
	if !okA || !okB {
		return 0, false
	}
	return vec.Cosine(c.vectors[ia], c.vectors[ib]), true
}

// Similar 返回与 seed 最相似的 n 本书（不含 seed 本身），相似度相同按 ID 升序。
// seed 不在索引中时返回 NOT_FOUND。
func (c *ContentIndex) Similar(seed int64, n int) ([]core.Scored, error) {
	i, ok := c.pos[seed]
	if !ok {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeNotFound,
			"content: unknown seed", fmt.Errorf("book %d", seed))
	}
	out := make([]core.Scored, 0, len(c.ids)-1)
	for j, id := range c.ids {
		if j == i || id == seed {
			continue
		}
		out = append(out, core.Scored{ID: id, Score: vec.Cosine(c.vectors[i], c.vectors[j])})
	}
	return topScored(out, n), nil
}
