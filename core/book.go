package core

import (
	"strings"
	"time"
)

// Book 是目录中的一本书，快照构建时整体导入，之后只读。
type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Genres        []string  `json:"genres"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Text 返回用于内容相似度的文本：标题 + 作者 + 简介 + 类别。
func (b *Book) Text() string {
	parts := make([]string, 0, 3+len(b.Genres))
	parts = append(parts, b.Title, b.Author, b.Description)
	parts = append(parts, b.Genres...)
	return strings.Join(parts, " ")
}

// ParseGenres 把空格分隔的类别串转成小写切片，例如 "Mystery Thriller" -> [mystery thriller]。
func ParseGenres(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// Rating 是一次用户评分（交互）。Rating 取值 [1,5]。
type Rating struct {
	UserID    int64     `json:"user_id"`
	BookID    int64     `json:"book_id"`
	Rating    float64   `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodDims 是情绪向量的维度数。
const MoodDims = 8

// MoodVector 依次为 happy, sad, calm, thrilling, dark, funny, emotional, optimistic，取值 [0,10]。
type MoodVector [MoodDims]float64

// MoodBook 是情绪目录中的条目，独立于 Book，可以通过 BookID 关联。
type MoodBook struct {
	ID           int64      `json:"id"`
	BookID       *int64     `json:"book_id,omitempty"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Country      string     `json:"country"`
	Description  string     `json:"description"`
	MoodVector   MoodVector `json:"mood_vector"`
	Complexity   int        `json:"complexity"`
	LiteraryTone string     `json:"literary_tone,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
}

// Export 是一次全量导出：目录 + 评分 + 情绪目录，快照只从它构建。
type Export struct {
	Books     []Book     `json:"books"`
	Ratings   []Rating   `json:"ratings"`
	MoodBooks []MoodBook `json:"mood_books"`
}
