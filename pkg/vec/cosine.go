// Package vec 提供文本向量化（TF-IDF）与余弦相似度。
package vec

import "math"

// SparseVector 是稀疏向量，Indices 严格递增，与 Values 一一对应。
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len 返回非零项个数。
func (v SparseVector) Len() int { return len(v.Indices) }

// Norm 返回 L2 范数。
func (v SparseVector) Norm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return math.Sqrt(s)
}

// Dot 按索引归并求内积。
func Dot(a, b SparseVector) float64 {
	var (
		i, j int
		sum  float64
	)
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine 计算两个稀疏向量的余弦相似度，任一向量模为 0 时返回 0。
// 对非负向量结果落在 [0,1]。
func Cosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(Dot(a, b)/(na*nb), -1, 1)
}

// CosineDense 计算两个定长稠密向量的余弦相似度。
// 长度不一致或任一向量模为 0 时返回 0。
func CosineDense(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot/(math.Sqrt(na)*math.Sqrt(nb)), -1, 1)
}

// 浮点误差可能让 1.0000000002 之类的值越界
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
