package model

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/bookrec/core"
)

func ids(s []core.Scored) []int64 {
	out := make([]int64, len(s))
	for i, x := range s {
		out[i] = x.ID
	}
	return out
}

func TestPopularityMinSupport(t *testing.T) {
	books := []core.Book{
		{ID: 1, AverageRating: 4.5, RatingCount: 10},
		{ID: 2, AverageRating: 4.5, RatingCount: 2},
		{ID: 3, AverageRating: 3.0, RatingCount: 20},
	}
	p := FitPopularity(books, nil, time.Now(), DefaultPopularityConfig())

	if got := ids(p.Overall()); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Fatalf("Overall() ids = %v, want [1 3]", got)
	}
	if _, ok := p.Score(2); ok {
		t.Errorf("book below min support should be absent")
	}
	if s := p.Overall()[0].Score; math.Abs(s-3.3) > 1e-9 {
		t.Errorf("score(1) = %v, want 3.3", s)
	}
	if s := p.Overall()[1].Score; math.Abs(s-2.4) > 1e-9 {
		t.Errorf("score(3) = %v, want 2.4", s)
	}
}

func TestTrending(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	books := []core.Book{
		{ID: 1, AverageRating: 4.0, RatingCount: 10},
		{ID: 2, AverageRating: 3.0, RatingCount: 10},
	}
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-90 * 24 * time.Hour)

	t.Run("window", func(t *testing.T) {
		ratings := []core.Rating{
			{UserID: 1, BookID: 2, Rating: 5, CreatedAt: recent},
			{UserID: 2, BookID: 2, Rating: 4, CreatedAt: recent},
			{UserID: 3, BookID: 2, Rating: 3, CreatedAt: recent},
			{UserID: 1, BookID: 1, Rating: 5, CreatedAt: old},
			{UserID: 2, BookID: 1, Rating: 5, CreatedAt: old},
			{UserID: 3, BookID: 1, Rating: 5, CreatedAt: old},
		}
		p := FitPopularity(books, ratings, now, DefaultPopularityConfig())
		tr := p.Trending()
		if len(tr) != 1 || tr[0].ID != 2 {
			t.Fatalf("Trending() = %v, want only book 2", tr)
		}
		if math.Abs(tr[0].Score-(0.6*4+0.4)) > 1e-9 {
			t.Errorf("trending score = %v", tr[0].Score)
		}
	})

	t.Run("cutoff is exclusive", func(t *testing.T) {
		cutoff := now.Add(-DefaultPopularityConfig().TrendingWindow)
		ratings := []core.Rating{
			{UserID: 1, BookID: 2, Rating: 4, CreatedAt: recent},
			{UserID: 2, BookID: 2, Rating: 4, CreatedAt: recent},
			{UserID: 3, BookID: 2, Rating: 4, CreatedAt: recent},
			{UserID: 1, BookID: 1, Rating: 5, CreatedAt: cutoff},
			{UserID: 2, BookID: 1, Rating: 5, CreatedAt: cutoff},
			{UserID: 3, BookID: 1, Rating: 5, CreatedAt: cutoff.Add(time.Second)},
		}
		tr := FitPopularity(books, ratings, now, DefaultPopularityConfig()).Trending()
		if len(tr) != 1 || tr[0].ID != 2 {
			t.Errorf("Trending() = %v, want only book 2", tr)
		}
	})

	t.Run("fallback to overall", func(t *testing.T) {
		p := FitPopularity(books, nil, now, DefaultPopularityConfig())
		if !reflect.DeepEqual(p.Trending(), p.Overall()) {
			t.Errorf("Trending() = %v, want overall %v", p.Trending(), p.Overall())
		}
	})
}

func TestBiasModelPredict(t *testing.T) {
	ratings := []core.Rating{
		{UserID: 1, BookID: 10, Rating: 4},
		{UserID: 2, BookID: 20, Rating: 2},
	}
	m := FitBias(ratings)
	if m.GlobalMean() != 3.0 {
		t.Fatalf("GlobalMean() = %v, want 3", m.GlobalMean())
	}
	// 3.0 + (4.0-3.0) + (2.0-3.0)
	if got := m.Predict(1, 20); got != 3.0 {
		t.Errorf("Predict(1,20) = %v, want 3.0", got)
	}
}

func TestBiasModelClampAndEmpty(t *testing.T) {
	ratings := []core.Rating{
		{UserID: 1, BookID: 10, Rating: 5},
		{UserID: 2, BookID: 20, Rating: 1},
		{UserID: 2, BookID: 10, Rating: 1},
		{UserID: 2, BookID: 10, Rating: 5}, // 最后一次为准
	}
	m := FitBias(ratings)
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after dedup", m.Len())
	}
	for _, u := range []int64{1, 2, 99} {
		for _, b := range []int64{10, 20, 99} {
			p := m.Predict(u, b)
			if p < 1 || p > 5 {
				t.Errorf("Predict(%d,%d) = %v out of [1,5]", u, b, p)
			}
		}
	}

	empty := FitBias(nil)
	if got := empty.Predict(1, 1); got != 3.0 {
		t.Errorf("empty Predict = %v, want global mean 3.0", got)
	}
}

func TestAssociation(t *testing.T) {
	h := Histories{1: {'A', 'B', 'C'}}
	a := FitAssociation(h)
	for _, pair := range [][2]int64{{'A', 'B'}, {'A', 'C'}, {'B', 'C'}} {
		if a.Count(pair[0], pair[1]) != 1 || a.Count(pair[1], pair[0]) != 1 {
			t.Errorf("co-occurrence(%c,%c) should be 1", pair[0], pair[1])
		}
	}
	got := a.Associated('A', 10)
	want := []core.Scored{{ID: 'B', Score: 1}, {ID: 'C', Score: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Associated(A) = %v, want %v", got, want)
	}
	if a.Associated('Z', 10) != nil {
		t.Errorf("seed without co-occurrence should return empty")
	}
}

func TestAssociationNormalized(t *testing.T) {
	h := Histories{
		1: {1, 2, 3},
		2: {1, 2},
	}
	got := FitAssociation(h).Associated(1, 10)
	want := []core.Scored{{ID: 2, Score: 1}, {ID: 3, Score: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Associated(1) = %v, want %v", got, want)
	}
}

func TestContentSimilar(t *testing.T) {
	books := []core.Book{
		{ID: 1, Title: "Dragon Quest", Description: "a dragon hunts across the mountain kingdom", Genres: []string{"fantasy"}},
		{ID: 2, Title: "Dragon Rider", Description: "young rider befriends a dragon in the kingdom", Genres: []string{"fantasy"}},
		{ID: 3, Title: "Balance Sheets", Description: "accounting for small business owners", Genres: []string{"business"}},
	}
	idx := FitContent(books, 0)

	got, err := idx.Similar(1, 2)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("Similar(1) = %v, want book 2 first", got)
	}
	for _, s := range got {
		if s.ID == 1 {
			t.Errorf("seed must be excluded")
		}
	}

	s12, _ := idx.Similarity(1, 2)
	s21, _ := idx.Similarity(2, 1)
	if s12 != s21 || s12 < 0 || s12 > 1 {
		t.Errorf("Similarity(1,2) = %v, Similarity(2,1) = %v", s12, s21)
	}

	if _, err := idx.Similar(42, 5); !core.IsNotFound(err) {
		t.Errorf("unknown seed error = %v, want NOT_FOUND", err)
	}
}

func TestCategoryScorer(t *testing.T) {
	books := []core.Book{
		{ID: 1, Genres: []string{"mystery"}, AverageRating: 4},
		{ID: 2, Genres: []string{"horror"}, AverageRating: 5},
		{ID: 3, Genres: []string{"fiction"}, AverageRating: 3},
		{ID: 4, Genres: []string{"mystery", "horror"}, AverageRating: 2},
	}
	c := FitCategory(books, ContextTable())

	got := c.Lookup("Night")
	want := []core.Scored{{ID: 2, Score: 1}, {ID: 1, Score: 0.8}, {ID: 4, Score: 0.4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup(night) = %v, want %v", got, want)
	}

	if c.Known("brunch") {
		t.Errorf("brunch should be unknown")
	}
	if got := ids(c.Lookup("brunch")); !reflect.DeepEqual(got, []int64{3}) {
		t.Errorf("unknown tag should fall back to fiction, got %v", got)
	}
}

func TestCategoryScorerExactGenre(t *testing.T) {
	books := []core.Book{
		{ID: 1, Genres: []string{"nonfiction"}, AverageRating: 5},
		{ID: 2, Genres: []string{"martial-arts"}, AverageRating: 5},
		{ID: 3, Genres: []string{"fiction"}, AverageRating: 3},
		{ID: 4, Genres: []string{"Art"}, AverageRating: 4},
	}
	tests := []struct {
		table TagTable
		tag   string
		want  []int64
	}{
		{ContextTable(), "afternoon", []int64{3}},
		{PersonalityTable(), "creative", []int64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := ids(FitCategory(books, tt.table).Lookup(tt.tag))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lookup(%s) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestDemographic(t *testing.T) {
	ratings := []core.Rating{
		{UserID: 1, BookID: 1, Rating: 5},
		{UserID: 1, BookID: 2, Rating: 3},
		{UserID: 2, BookID: 3, Rating: 4},
	}
	d := FitDemographic(FitBias(ratings), 2)
	if got := ids(d.Profile(DefaultProfile)); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("Profile() = %v, want [1 3]", got)
	}
	if s, ok := d.Score(2); ok || s != DemographicDefaultScore {
		t.Errorf("Score(2) = (%v,%v), want default", s, ok)
	}
	if s, ok := d.Score(1); !ok || s != 5 {
		t.Errorf("Score(1) = (%v,%v), want (5,true)", s, ok)
	}
}

func TestBuildHistories(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ratings := []core.Rating{
		{UserID: 1, BookID: 3, CreatedAt: t0.Add(2 * time.Hour)},
		{UserID: 1, BookID: 1, CreatedAt: t0},
		{UserID: 1, BookID: 2, CreatedAt: t0.Add(time.Hour)},
	}
	h := BuildHistories(ratings)
	if got := h.Of(1); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("Of(1) = %v, want [1 2 3]", got)
	}
	if h.Of(2) != nil {
		t.Errorf("unknown user should have nil history")
	}
}
