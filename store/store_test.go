package store

import (
	"context"
	"database/sql"
	"math"
	"os"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rushteam/bookrec/core"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}
	buf := []byte("v")
	if err := s.Set(ctx, "k", buf, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	buf[0] = 'x'
	if got, err := s.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("Get(k) = %q, %v; Set should copy the value", got, err)
	}

	ranking := []core.Scored{{ID: 3, Score: 1}, {ID: 2, Score: 3}, {ID: 1, Score: 3}}
	if err := s.ReplaceRanking(ctx, "z", ranking); err != nil {
		t.Fatal(err)
	}
	got, _ := s.TopRanking(ctx, "z", 0)
	want := []core.Scored{{ID: 1, Score: 3}, {ID: 2, Score: 3}, {ID: 3, Score: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopRanking() = %v, want %v", got, want)
	}
	if top, _ := s.TopRanking(ctx, "z", 2); len(top) != 2 || top[1].ID != 2 {
		t.Errorf("TopRanking(2) = %v", top)
	}

	_ = s.Delete(ctx, "z")
	if got, err := s.TopRanking(ctx, "z", 0); err != nil || len(got) != 0 {
		t.Errorf("Delete should drop the ranking, got %v, %v", got, err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.Set(ctx, "k", []byte("v"), time.Hour)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("live key: %v", err)
	}

	s.mu.Lock()
	v := s.values["k"]
	v.expires = time.Now().Add(-time.Second)
	s.values["k"] = v
	s.mu.Unlock()
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key should not be found, err = %v", err)
	}
}

func sampleExport() *core.Export {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bookID := int64(1)
	lat := 48.85
	return &core.Export{
		Books: []core.Book{
			{ID: 1, Title: "Dune", Author: "Frank Herbert", Genres: []string{"sci-fi"}, AverageRating: 4.3, RatingCount: 12, CreatedAt: ts},
			{ID: 2, Title: "Emma", Author: "Jane Austen", Genres: []string{"romance", "classic"}, AverageRating: 3.9, RatingCount: 8, CreatedAt: ts},
		},
		Ratings: []core.Rating{
			{UserID: 7, BookID: 1, Rating: 5, Review: "great", CreatedAt: ts},
			{UserID: 7, BookID: 2, Rating: 3, CreatedAt: ts.Add(time.Hour)},
		},
		MoodBooks: []core.MoodBook{
			{ID: 10, BookID: &bookID, Title: "Dune", Country: "USA", MoodVector: core.MoodVector{1, 0, 2, 8, 5, 0, 3, 4}, Complexity: 8, Latitude: &lat},
		},
	}
}

func TestKVExport(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	want := sampleExport()
	if err := SaveExport(ctx, s, "", want); err != nil {
		t.Fatalf("SaveExport() error = %v", err)
	}
	got, err := (&KVExport{Store: s}).LoadExport(ctx)
	if err != nil {
		t.Fatalf("LoadExport() error = %v", err)
	}
	if len(got.Books) != 2 || got.Books[1].Genres[1] != "classic" || *got.MoodBooks[0].BookID != 1 {
		t.Errorf("LoadExport() = %+v", got)
	}

	_ = s.Set(ctx, "broken", []byte("{"), 0)
	if _, err := (&KVExport{Store: s, Key: "broken"}).LoadExport(ctx); !core.IsInvalidInput(err) {
		t.Errorf("broken export error = %v, want INVALID_INPUT", err)
	}
}

func TestSQLExport(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		t.Fatal(err)
	}
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mustExec(t, db, `INSERT INTO books (id, title, author, description, genres, average_rating, rating_count, created_at) VALUES (1, 'Dune', 'Frank Herbert', 'desert planet', 'Sci-Fi Classic', 4.3, 12, ?)`, ts)
	mustExec(t, db, `INSERT INTO books (id, title, genres) VALUES (2, 'Emma', 'romance')`)
	mustExec(t, db, `INSERT INTO ratings (user_id, book_id, rating, created_at) VALUES (7, 1, 5, ?)`, ts)
	mustExec(t, db, `INSERT INTO ratings (user_id, book_id, rating, created_at) VALUES (7, 1, 2, ?)`, ts.Add(time.Hour))
	mustExec(t, db, `INSERT INTO mood_books (id, book_id, title, country, happy, dark, complexity, latitude) VALUES (10, 1, 'Dune', 'USA', 3, 6, 8, 48.85)`)
	mustExec(t, db, `INSERT INTO mood_books (id, title, country) VALUES (11, 'Poems', 'Chile')`)

	exp, err := (&SQLExport{DB: db}).LoadExport(ctx)
	if err != nil {
		t.Fatalf("LoadExport() error = %v", err)
	}
	if len(exp.Books) != 2 || !reflect.DeepEqual(exp.Books[0].Genres, []string{"sci-fi", "classic"}) {
		t.Fatalf("books = %+v", exp.Books)
	}
	if !exp.Books[0].CreatedAt.Equal(ts) || !exp.Books[1].CreatedAt.IsZero() {
		t.Errorf("created_at = %v / %v", exp.Books[0].CreatedAt, exp.Books[1].CreatedAt)
	}
	if len(exp.Ratings) != 2 || exp.Ratings[1].Rating != 2 {
		t.Errorf("ratings should keep insertion order, got %+v", exp.Ratings)
	}
	m := exp.MoodBooks
	if len(m) != 2 || m[0].MoodVector[0] != 3 || m[0].MoodVector[4] != 6 || *m[0].BookID != 1 || *m[0].Latitude != 48.85 {
		t.Errorf("mood books = %+v", m)
	}
	if m[1].BookID != nil || m[1].Latitude != nil || m[1].Complexity != 5 {
		t.Errorf("nullable columns = %+v", m[1])
	}
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := db.Exec(q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	key := RankingKey("", RankingPopular)
	if key != "bookrec:ranking:popular" {
		t.Fatalf("RankingKey() = %q", key)
	}
	_ = s.ReplaceRanking(ctx, key, []core.Scored{{ID: 99, Score: 9}})
	ranking := []core.Scored{{ID: 1, Score: 3.3, Sources: []string{"popularity"}}, {ID: 4, Score: math.NaN()}, {ID: 3, Score: 2.4}}
	if err := Publish(ctx, s, key, ranking); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	got, _ := s.TopRanking(ctx, key, 0)
	want := []core.Scored{{ID: 1, Score: 3.3}, {ID: 3, Score: 2.4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("published = %v, want %v (stale entries replaced, NaN dropped)", got, want)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BOOKREC_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOOKREC_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisOptions{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	key := RankingKey("bookrec-test", RankingTrending)
	if err := Publish(ctx, s, key, []core.Scored{{ID: 5, Score: 1}, {ID: 6, Score: 2}, {ID: 10, Score: 2}}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	defer s.Delete(ctx, key)
	got, err := s.TopRanking(ctx, key, 2)
	want := []core.Scored{{ID: 6, Score: 2}, {ID: 10, Score: 2}}
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Errorf("TopRanking() = %v, %v; want %v", got, err, want)
	}
	if _, err := s.Get(ctx, "bookrec-test:missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v", err)
	}
}
