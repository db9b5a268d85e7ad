package vec

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxFeatures 是词表上限。
const DefaultMaxFeatures = 5000

// Tokenize 把文本切成小写词元：连续的字母/数字且长度 >= 2，去掉英文停用词。
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Terms 返回一元词与相邻二元词（去停用词之后相邻）。
func Terms(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// Vectorizer 是在固定词表上的 TF-IDF 向量化器。Fit 之后只读，可并发 Transform。
type Vectorizer struct {
	vocab map[string]int
	terms []string
	idf   []float64
}

// FitTFIDF 从语料构建词表：按语料总词频取前 maxFeatures 个（频次相同按字典序），
// idf = ln((1+n)/(1+df)) + 1。maxFeatures <= 0 时取 DefaultMaxFeatures。
func FitTFIDF(docs []string, maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	tf := make(map[string]int)
	df := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, t := range Terms(d) {
			tf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(tf))
	for t := range tf {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// VocabSize 返回词表大小。
func (v *Vectorizer) VocabSize() int { return len(v.terms) }

// Term 返回索引对应的词。
func (v *Vectorizer) Term(i int) string { return v.terms[i] }

// Transform 把文本转成 L2 归一化的 TF-IDF 稀疏向量，词表外的词忽略。
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, t := range Terms(text) {
		if idx, ok := v.vocab[t]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	idx := make([]int, 0, len(counts))
	for i := range counts {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	vals := make([]float64, len(idx))
	var norm float64
	for k, i := range idx {
		w := counts[i] * v.idf[i]
		vals[k] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for k := range vals {
		vals[k] /= norm
	}
	return SparseVector{Indices: idx, Values: vals}
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during
each few for from further had has have having he her here hers herself him
himself his how if in into is it its itself just me more most my myself no nor
not now of off on once only or other our ours ourselves out over own same she
should so some such than that the their theirs them themselves then there these
they this those through to too under until up very was we were what when where
which while who whom why will with would you your yours yourself yourselves
also among amongst around became become becomes else ever every etc however
its may might must neither never often perhaps rather since still though thus
upon whatever whereas whether yet`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
