package mood

import (
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/bookrec/core"
)

func TestRecommendCosine(t *testing.T) {
	r := NewRecommender([]core.MoodBook{
		{ID: 1, MoodVector: core.MoodVector{10}},
		{ID: 2, MoodVector: core.MoodVector{0, 10}},
	})
	got := r.Recommend(Query{Vector: core.MoodVector{10}, N: 10})
	want := []core.Scored{{ID: 1, Score: 1}, {ID: 2, Score: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestRecommendFilters(t *testing.T) {
	books := []core.MoodBook{
		{ID: 1, Country: "Japan", Complexity: 3, MoodVector: core.MoodVector{5, 5}},
		{ID: 2, Country: "Japan", Complexity: 8, MoodVector: core.MoodVector{5, 5}},
		{ID: 3, Country: "Chile", Complexity: 5, MoodVector: core.MoodVector{5, 5}},
		{ID: 4, Country: "", MoodVector: core.MoodVector{5, 5}},
	}
	r := NewRecommender(books)
	q := core.MoodVector{1, 1}

	tests := []struct {
		name    string
		filters Filters
		want    []int64
	}{
		{"none", Filters{}, []int64{1, 2, 3, 4}},
		{"country case insensitive", Filters{Country: "japan"}, []int64{1, 2}},
		{"complexity min", Filters{ComplexityMin: 5}, []int64{2, 3, 4}},
		{"complexity max", Filters{ComplexityMax: 5}, []int64{1, 3, 4}},
		{"bounds at scale edges ignored", Filters{ComplexityMin: 1, ComplexityMax: 10}, []int64{1, 2, 3, 4}},
		{"unknown country", Filters{Country: "Mars"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Recommend(Query{Vector: q, Filters: tt.filters})
			got := make([]int64, 0, len(res))
			for _, s := range res {
				got = append(got, s.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	vs := []core.MoodVector{
		{10, 0, 3, 0, 0, 2, 0, 1},
		{0, 8, 0, 9, 10, 0, 4, 0},
		{},
		{10, 10, 10, 10, 10, 10, 10, 10},
	}
	for _, a := range vs {
		for _, b := range vs {
			s := Similarity(a, b)
			if s < 0 || s > 1 {
				t.Fatalf("Similarity(%v,%v) = %v", a, b, s)
			}
			if s != Similarity(b, a) {
				t.Fatalf("Similarity not symmetric for %v,%v", a, b)
			}
		}
	}
}

func TestAutoTag(t *testing.T) {
	v := AutoTag("A dark, grim and sinister horror tale with a thread of hope.")
	if v[Dark] != 8 {
		t.Errorf("dark = %v, want 8", v[Dark])
	}
	if v[Optimistic] != 2 {
		t.Errorf("optimistic = %v, want 2", v[Optimistic])
	}
	if v[Happy] != 0 || v[Calm] != 0 {
		t.Errorf("unexpected hits: %v", v)
	}

	capped := AutoTag("joy happy cheerful delight smile laughter celebration")
	if capped[Happy] != MaxValue {
		t.Errorf("happy = %v, want capped at %v", capped[Happy], MaxValue)
	}
}

func TestCountryStats(t *testing.T) {
	r := NewRecommender([]core.MoodBook{
		{ID: 1, Country: "Japan"},
		{ID: 2, Country: "Chile"},
		{ID: 3, Country: "Japan"},
		{ID: 4},
	})
	want := []CountryStat{{"Japan", 2}, {"Chile", 1}}
	if got := r.CountryStats(); !reflect.DeepEqual(got, want) {
		t.Errorf("CountryStats() = %v, want %v", got, want)
	}
	if !r.HasCountry(" chile") || r.HasCountry("Peru") {
		t.Errorf("HasCountry mismatch")
	}
}

func TestNewRecommenderNormalizes(t *testing.T) {
	r := NewRecommender([]core.MoodBook{{ID: 1, MoodVector: core.MoodVector{42, -3}}})
	b, ok := r.Get(1)
	if !ok || b.MoodVector[0] != 10 || b.MoodVector[1] != 0 || b.Complexity != 5 {
		t.Errorf("normalized = %+v", b)
	}
	v := ParseVector(map[string]float64{"dark": 7, "funny": 11})
	if v[Dark] != 7 || v[Funny] != 10 || math.Abs(v[Happy]) != 0 {
		t.Errorf("ParseVector() = %v", v)
	}
	if Thrilling.String() != "thrilling" || Dimension(99).String() != "unknown" {
		t.Errorf("Dimension.String mismatch")
	}
}
