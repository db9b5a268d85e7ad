// Package snapshot 定义打分快照：一次全量导出拟合出的、不可变的全部派生结构。
//
// 快照由 Build 一次性构建，之后只读；在线服务通过 Holder 原子替换当前快照。
// 正在执行的请求持有旧快照的指针，替换不会影响它们，也不存在读到一半新一半旧的情况。
package snapshot

import (
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/mood"
)

// Snapshot 是只读的打分快照。所有字段在 Build 返回后不得修改。
type Snapshot struct {
	ID      string
	Version uint64
	BuiltAt time.Time

	books   map[int64]*core.Book
	bookIDs []int64 // 按导出顺序

	Content     *model.ContentIndex
	Popularity  *model.Popularity
	Bias        *model.BiasModel
	Association *model.Association
	Context     *model.CategoryScorer
	Personality *model.CategoryScorer
	Demographic *model.Demographic
	Histories   model.Histories
	Mood        *mood.Recommender

	// Blacklist 是构建时读入的下架书目
	Blacklist []int64

	ratings int
}

// Book 返回目录中的书。
func (s *Snapshot) Book(id int64) (*core.Book, bool) {
	b, ok := s.books[id]
	return b, ok
}

// BookIDs 返回目录全部 ID（导出顺序，只读）。
func (s *Snapshot) BookIDs() []int64 { return s.bookIDs }

// History 返回用户在快照中的评分历史（最近的在最后）。
func (s *Snapshot) History(userID int64) []int64 { return s.Histories.Of(userID) }

// Stats 是快照的概要信息。
type Stats struct {
	ID        string    `json:"id"`
	Version   uint64    `json:"version"`
	BuiltAt   time.Time `json:"built_at"`
	Books     int       `json:"books"`
	Ratings   int       `json:"ratings"`
	Users     int       `json:"users"`
	MoodBooks int       `json:"mood_books"`
	Vocab     int       `json:"vocab"`
}

// Stats 返回快照的概要信息。
func (s *Snapshot) Stats() Stats {
	return Stats{
		ID:        s.ID,
		Version:   s.Version,
		BuiltAt:   s.BuiltAt,
		Books:     len(s.bookIDs),
		Ratings:   s.ratings,
		Users:     len(s.Histories),
		MoodBooks: s.Mood.Len(),
		Vocab:     s.Content.VocabSize(),
	}
}
