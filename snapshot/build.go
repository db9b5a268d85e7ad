package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/mood"
)

// Options 控制快照构建。
type Options struct {
	Version     uint64
	Now         time.Time // 趋势窗口的截止时间，零值取 time.Now()
	MaxFeatures int       // TF-IDF 词表上限
	Popularity  model.PopularityConfig
	ProfileSize int // 默认画像大小
	Blacklist   []int64
}

// DefaultOptions 返回默认构建参数。
func DefaultOptions() Options {
	return Options{
		MaxFeatures: 5000,
		Popularity:  model.DefaultPopularityConfig(),
		ProfileSize: 50,
	}
}

// Build 从一次全量导出构建快照。各模型互不依赖，并发拟合。
//
// 目录为空返回 NOT_CONFIGURED；评分超出 [1,5] 或书目 ID 重复返回 INVALID_INPUT。
// ctx 取消时返回错误，已拟合的部分直接丢弃，调用方的当前快照不受影响。
func Build(ctx context.Context, exp *core.Export, opts Options) (*Snapshot, error) {
	if exp == nil || len(exp.Books) == 0 {
		return nil, core.NewDomainError(core.ModuleSnapshot, core.ErrorCodeNotConfigured, "snapshot: empty catalog")
	}
	if err := validate(exp); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := &Snapshot{
		ID:        uuid.NewString(),
		Version:   opts.Version,
		BuiltAt:   time.Now(),
		books:     make(map[int64]*core.Book, len(exp.Books)),
		bookIDs:   make([]int64, len(exp.Books)),
		Histories: model.BuildHistories(exp.Ratings),
		Blacklist: append([]int64(nil), opts.Blacklist...),
		ratings:   len(exp.Ratings),
	}
	books := make([]core.Book, len(exp.Books))
	for i, b := range exp.Books {
		b.Genres = normalizeGenres(b.Genres)
		books[i] = b
		s.bookIDs[i] = b.ID
		s.books[b.ID] = &books[i]
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.Content = model.FitContent(books, opts.MaxFeatures)
		return egCtx.Err()
	})
	eg.Go(func() error {
		s.Popularity = model.FitPopularity(books, exp.Ratings, now, opts.Popularity)
		return egCtx.Err()
	})
	eg.Go(func() error {
		s.Bias = model.FitBias(exp.Ratings)
		s.Demographic = model.FitDemographic(s.Bias, opts.ProfileSize)
		return egCtx.Err()
	})
	eg.Go(func() error {
		s.Association = model.FitAssociation(s.Histories)
		return egCtx.Err()
	})
	eg.Go(func() error {
		s.Context = model.FitCategory(books, model.ContextTable())
		s.Personality = model.FitCategory(books, model.PersonalityTable())
		return egCtx.Err()
	})
	eg.Go(func() error {
		s.Mood = mood.NewRecommender(exp.MoodBooks)
		return egCtx.Err()
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot: build: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: build: %w", err)
	}
	return s, nil
}

func validate(exp *core.Export) error {
	seen := make(map[int64]struct{}, len(exp.Books))
	for _, b := range exp.Books {
		if _, dup := seen[b.ID]; dup {
			return core.WrapDomainError(core.ModuleSnapshot, core.ErrorCodeInvalidInput,
				"snapshot: duplicate book", fmt.Errorf("book %d", b.ID))
		}
		seen[b.ID] = struct{}{}
	}
	for _, r := range exp.Ratings {
		if r.Rating < core.MinRating || r.Rating > core.RatingScale {
			return core.WrapDomainError(core.ModuleSnapshot, core.ErrorCodeInvalidInput,
				"snapshot: rating out of range", fmt.Errorf("user %d book %d rating %v", r.UserID, r.BookID, r.Rating))
		}
	}
	return nil
}

// normalizeGenres 拆分、小写并去重，保留首次出现的顺序。
func normalizeGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		for _, tok := range core.ParseGenres(g) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}
