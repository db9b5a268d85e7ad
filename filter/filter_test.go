package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/store"
)

func items(books ...core.Book) []*core.Item {
	out := make([]*core.Item, 0, len(books))
	for i := range books {
		it := core.NewItem(books[i].ID)
		it.Book = &books[i]
		out = append(out, it)
	}
	return out
}

func itemIDs(in []*core.Item) []int64 {
	out := make([]int64, len(in))
	for i, it := range in {
		out[i] = it.ID
	}
	return out
}

type failingFilter struct{}

func (failingFilter) Name() string { return "failing" }
func (failingFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("broken")
}

func TestFilterNode(t *testing.T) {
	books := []core.Book{
		{ID: 1, Genres: []string{"fantasy"}, RatingCount: 300},
		{ID: 2, Genres: []string{"horror"}, RatingCount: 50},
		{ID: 3, Genres: []string{"mystery"}, RatingCount: 120},
		{ID: 4, Genres: []string{"fantasy"}, RatingCount: 8},
	}
	rctx := &core.RecommendContext{UserID: 1}
	rctx.SetCandidates([]int64{1, 2, 3, 4}, map[int64]struct{}{3: {}})

	expr, err := NewExprFilter(`book.rating_count >= 10`)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		filters []Filter
		want    []int64
	}{
		{"exclude", []Filter{&ExcludeFilter{}}, []int64{1, 2, 4}},
		{"blacklist", []Filter{NewBlacklistFilter([]int64{2})}, []int64{1, 3, 4}},
		{"expr", []Filter{expr}, []int64{1, 2, 3}},
		{"combined", []Filter{&ExcludeFilter{}, NewBlacklistFilter([]int64{2}), expr}, []int64{1}},
		{"none", nil, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &FilterNode{Filters: tt.filters}
			got, err := n.Process(context.Background(), rctx, items(books...))
			if err != nil {
				t.Fatal(err)
			}
			ids := itemIDs(got)
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("got %v, want %v", ids, tt.want)
					break
				}
			}
		})
	}
}

func TestFilterNodeOnDrop(t *testing.T) {
	rctx := &core.RecommendContext{UserID: 1}
	rctx.SetCandidates([]int64{1, 2, 3, 4}, map[int64]struct{}{1: {}})

	drops := map[string]int{}
	n := &FilterNode{
		Filters: []Filter{&ExcludeFilter{}, NewBlacklistFilter([]int64{1, 2, 3})},
		OnDrop:  func(name string, c int) { drops[name] = c },
	}
	got, err := n.Process(context.Background(), rctx, items(core.Book{ID: 1}, core.Book{ID: 2}, core.Book{ID: 3}, core.Book{ID: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if ids := itemIDs(got); len(ids) != 1 || ids[0] != 4 {
		t.Errorf("got %v, want [4]", ids)
	}
	// 1 先被 exclude 命中，不再计入黑名单
	if drops["filter.exclude"] != 1 || drops["filter.blacklist"] != 2 {
		t.Errorf("drops = %v", drops)
	}
}

func TestFilterNodeErrorKeepsItem(t *testing.T) {
	var reported string
	n := &FilterNode{
		Filters: []Filter{failingFilter{}},
		OnError: func(name string, _ error) { reported = name },
	}
	got, err := n.Process(context.Background(), &core.RecommendContext{}, items(core.Book{ID: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want item kept", len(got))
	}
	if reported != "failing" {
		t.Errorf("OnError name = %q", reported)
	}
}

func TestNewExprFilterInvalid(t *testing.T) {
	if _, err := NewExprFilter("book.rating_count >="); !core.IsInvalidInput(err) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestExprFilterGenres(t *testing.T) {
	f, err := NewExprFilter(`!("horror" in book.genres)`)
	if err != nil {
		t.Fatal(err)
	}
	drop, err := f.ShouldFilter(context.Background(), &core.RecommendContext{}, items(core.Book{ID: 2, Genres: []string{"horror"}})[0])
	if err != nil || !drop {
		t.Errorf("horror book: drop=%v err=%v, want dropped", drop, err)
	}
	drop, err = f.ShouldFilter(context.Background(), &core.RecommendContext{}, items(core.Book{ID: 1, Genres: []string{"fantasy"}})[0])
	if err != nil || drop {
		t.Errorf("fantasy book: drop=%v err=%v, want kept", drop, err)
	}
}

func TestStoreAdapterGetBlacklist(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	if err := kv.Set(ctx, "blacklist", []byte(`[1, "2", "x", 3]`), 0); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "broken", []byte(`{`), 0); err != nil {
		t.Fatal(err)
	}

	a := NewStoreAdapter(kv)
	got, err := a.GetBlacklist(ctx, "blacklist")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("GetBlacklist() = %v, want [1 2 3]", got)
	}

	missing, err := a.GetBlacklist(ctx, "missing")
	if err != nil || len(missing) != 0 {
		t.Errorf("missing key = %v, %v; want empty", missing, err)
	}

	if _, err := a.GetBlacklist(ctx, "broken"); !core.IsInvalidInput(err) {
		t.Errorf("broken json err = %v, want INVALID_INPUT", err)
	}
}
