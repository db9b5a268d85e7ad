// Package mood 是基于情绪向量的推荐：用户声明一个 8 维情绪向量，
// 在情绪目录中按余弦相似度查找最接近的书。
//
// 没有任何索引结构，每次查询都是对目录的全量线性扫描。目录规模很小，这是可接受的容量上限。
package mood

import (
	"sort"
	"strings"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/vec"
)

// Dimension 是情绪向量的一个维度。
type Dimension int

const (
	Happy Dimension = iota
	Sad
	Calm
	Thrilling
	Dark
	Funny
	Emotional
	Optimistic
)

// MaxValue 是每个维度的上限。
const MaxValue = 10.0

var dimensionNames = [core.MoodDims]string{"happy", "sad", "calm", "thrilling", "dark", "funny", "emotional", "optimistic"}

func (d Dimension) String() string {
	if d < 0 || int(d) >= core.MoodDims {
		return "unknown"
	}
	return dimensionNames[d]
}

// Dimensions 返回全部维度，顺序与 MoodVector 一致。
func Dimensions() []Dimension {
	out := make([]Dimension, core.MoodDims)
	for i := range out {
		out[i] = Dimension(i)
	}
	return out
}

// ParseVector 从 维度名 -> 值 构造向量，未出现的维度为 0，值截断到 [0,10]。
func ParseVector(m map[string]float64) core.MoodVector {
	var v core.MoodVector
	for i, name := range dimensionNames {
		v[i] = clampValue(m[name])
	}
	return v
}

// Filters 是查询的类别/范围过滤。
// ComplexityMin 只在 > 1 时生效，ComplexityMax 只在 < 10 时生效。
type Filters struct {
	Country       string `json:"country,omitempty"`
	ComplexityMin int    `json:"complexity_min,omitempty" validate:"omitempty,min=1,max=10"`
	ComplexityMax int    `json:"complexity_max,omitempty" validate:"omitempty,min=1,max=10,gtefield=ComplexityMin"`
}

func (f Filters) match(b *core.MoodBook) bool {
	if f.Country != "" && !strings.EqualFold(strings.TrimSpace(f.Country), b.Country) {
		return false
	}
	if f.ComplexityMin > 1 && b.Complexity < f.ComplexityMin {
		return false
	}
	if f.ComplexityMax > 0 && f.ComplexityMax < 10 && b.Complexity > f.ComplexityMax {
		return false
	}
	return true
}

// Query 是一次情绪查询。
type Query struct {
	Vector  core.MoodVector `json:"vector"`
	N       int             `json:"n" validate:"min=0,max=100"`
	Filters Filters         `json:"filters"`
}

// Recommender 持有情绪目录，构建后只读，可并发查询。
type Recommender struct {
	books     []core.MoodBook
	countries map[string]int
}

// NewRecommender 复制目录并规范化：向量截断到 [0,10]，复杂度缺省为 5。
func NewRecommender(books []core.MoodBook) *Recommender {
	r := &Recommender{
		books:     make([]core.MoodBook, len(books)),
		countries: make(map[string]int),
	}
	for i, b := range books {
		for d := range b.MoodVector {
			b.MoodVector[d] = clampValue(b.MoodVector[d])
		}
		if b.Complexity <= 0 {
			b.Complexity = 5
		}
		r.books[i] = b
		if b.Country != "" {
			r.countries[b.Country]++
		}
	}
	return r
}

// Len 返回目录大小。
func (r *Recommender) Len() int { return len(r.books) }

// Recommend 扫描所有通过过滤的书，按与查询向量的余弦相似度降序返回前 N 个，相似度相同按 ID 升序。
// N <= 0 时取 10。
func (r *Recommender) Recommend(q Query) []core.Scored {
	n := q.N
	if n <= 0 {
		n = 10
	}
	query := q.Vector[:]
	out := make([]core.Scored, 0, len(r.books))
	for i := range r.books {
		b := &r.books[i]
		if !q.Filters.match(b) {
			continue
		}
		out = append(out, core.Scored{ID: b.ID, Score: vec.CosineDense(query, b.MoodVector[:])})
	}
	return core.TopScored(out, n)
}

// Similarity 是两个情绪向量的余弦相似度。
func Similarity(a, b core.MoodVector) float64 {
	return vec.CosineDense(a[:], b[:])
}

// Get 按 ID 返回目录条目。
func (r *Recommender) Get(id int64) (core.MoodBook, bool) {
	for _, b := range r.books {
		if b.ID == id {
			return b, true
		}
	}
	return core.MoodBook{}, false
}

// HasCountry 判断目录中是否存在该国家（大小写不敏感）。
func (r *Recommender) HasCountry(country string) bool {
	for c := range r.countries {
		if strings.EqualFold(c, strings.TrimSpace(country)) {
			return true
		}
	}
	return false
}

// CountryStat 是某个国家的书目数。
type CountryStat struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// CountryStats 返回各国家的书目数（只统计非空国家），按数量降序、国家名升序。
func (r *Recommender) CountryStats() []CountryStat {
	out := make([]CountryStat, 0, len(r.countries))
	for c, n := range r.countries {
		out = append(out, CountryStat{Country: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out
}

func clampValue(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > MaxValue {
		return MaxValue
	}
	return x
}
