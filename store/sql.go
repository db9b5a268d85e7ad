package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rushteam/bookrec/core"
)

// Schema 是 SQLExport 读取的最小表结构（与主业务库的 books / ratings / mood_books 对应）。
const Schema = `
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    genres TEXT NOT NULL DEFAULT '',
    average_rating REAL NOT NULL DEFAULT 0,
    rating_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME
);
CREATE TABLE IF NOT EXISTS ratings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    book_id INTEGER NOT NULL,
    rating REAL NOT NULL,
    review TEXT NOT NULL DEFAULT '',
    created_at DATETIME
);
CREATE TABLE IF NOT EXISTS mood_books (
    id INTEGER PRIMARY KEY,
    book_id INTEGER,
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    happy REAL NOT NULL DEFAULT 0,
    sad REAL NOT NULL DEFAULT 0,
    calm REAL NOT NULL DEFAULT 0,
    thrilling REAL NOT NULL DEFAULT 0,
    dark REAL NOT NULL DEFAULT 0,
    funny REAL NOT NULL DEFAULT 0,
    emotional REAL NOT NULL DEFAULT 0,
    optimistic REAL NOT NULL DEFAULT 0,
    complexity INTEGER NOT NULL DEFAULT 5,
    literary_tone TEXT NOT NULL DEFAULT '',
    latitude REAL,
    longitude REAL
);`

// InitSchema 创建表（已存在则跳过）。
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SQLExport 从关系库读取全量导出。评分按自增 id 排序，保证“最后一次为准”的语义。
// 整个读取在一个事务中完成，得到一致的快照，事务只读不写。
type SQLExport struct {
	DB *sql.DB
}

// LoadExport 实现 ExportSource。
func (s *SQLExport) LoadExport(ctx context.Context) (exp *core.Export, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapSQL("begin", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); err == nil && rbErr != nil && rbErr != sql.ErrTxDone {
			err = wrapSQL("rollback", rbErr)
		}
	}()

	exp = &core.Export{}
	if exp.Books, err = loadBooks(ctx, tx); err != nil {
		return nil, err
	}
	if exp.Ratings, err = loadRatings(ctx, tx); err != nil {
		return nil, err
	}
	if exp.MoodBooks, err = loadMoodBooks(ctx, tx); err != nil {
		return nil, err
	}
	return exp, nil
}

func loadBooks(ctx context.Context, tx *sql.Tx) ([]core.Book, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, title, author, description, genres, average_rating, rating_count, created_at FROM books ORDER BY id`)
	if err != nil {
		return nil, wrapSQL("query books", err)
	}
	defer rows.Close()

	var books []core.Book
	for rows.Next() {
		var (
			b       core.Book
			genres  string
			created sql.NullTime
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &genres, &b.AverageRating, &b.RatingCount, &created); err != nil {
			return nil, wrapSQL("scan book", err)
		}
		b.Genres = core.ParseGenres(genres)
		b.CreatedAt = created.Time
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL("iterate books", err)
	}
	return books, nil
}

func loadRatings(ctx context.Context, tx *sql.Tx) ([]core.Rating, error) {
	rows, err := tx.QueryContext(ctx, `SELECT user_id, book_id, rating, review, created_at FROM ratings ORDER BY id`)
	if err != nil {
		return nil, wrapSQL("query ratings", err)
	}
	defer rows.Close()

	var ratings []core.Rating
	for rows.Next() {
		var (
			r       core.Rating
			created sql.NullTime
		)
		if err := rows.Scan(&r.UserID, &r.BookID, &r.Rating, &r.Review, &created); err != nil {
			return nil, wrapSQL("scan rating", err)
		}
		r.CreatedAt = created.Time
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL("iterate ratings", err)
	}
	return ratings, nil
}

func loadMoodBooks(ctx context.Context, tx *sql.Tx) ([]core.MoodBook, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, book_id, title, author, country, description,
        happy, sad, calm, thrilling, dark, funny, emotional, optimistic,
        complexity, literary_tone, latitude, longitude FROM mood_books ORDER BY id`)
	if err != nil {
		return nil, wrapSQL("query mood_books", err)
	}
	defer rows.Close()

	var out []core.MoodBook
	for rows.Next() {
		var (
			m        core.MoodBook
			bookID   sql.NullInt64
			lat, lng sql.NullFloat64
			v        = &m.MoodVector
		)
		if err := rows.Scan(&m.ID, &bookID, &m.Title, &m.Author, &m.Country, &m.Description,
			&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7],
			&m.Complexity, &m.LiteraryTone, &lat, &lng); err != nil {
			return nil, wrapSQL("scan mood_book", err)
		}
		if bookID.Valid {
			id := bookID.Int64
			m.BookID = &id
		}
		if lat.Valid {
			m.Latitude = &lat.Float64
		}
		if lng.Valid {
			m.Longitude = &lng.Float64
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL("iterate mood_books", err)
	}
	return out, nil
}

func wrapSQL(op string, err error) error {
	return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: sql "+op, err)
}
