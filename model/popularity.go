package model

import (
	"time"

	"github.com/rushteam/bookrec/core"
)

// PopularityConfig 控制热门与趋势榜单。
type PopularityConfig struct {
	MinSupport       int           // 进入热门榜的最少评分数
	Cap              int           // 热门榜长度上限
	TrendingWindow   time.Duration // 趋势窗口
	TrendingMinCount int           // 窗口内最少评分数
	TrendingCap      int
	MinTrendingItems int // 少于该数目时趋势榜回退为热门榜
}

// DefaultPopularityConfig 返回默认配置。
func DefaultPopularityConfig() PopularityConfig {
	return PopularityConfig{
		MinSupport:       5,
		Cap:              100,
		TrendingWindow:   30 * 24 * time.Hour,
		TrendingMinCount: 3,
		TrendingCap:      50,
		MinTrendingItems: 1,
	}
}

// Popularity 持有热门榜与趋势榜，构建后只读。
type Popularity struct {
	overall  []core.Scored
	trending []core.Scored
	index    map[int64]float64
}

// FitPopularity 从目录聚合统计构建热门榜，从窗口内评分构建趋势榜。
//
// 热门分 = 0.7·均分 + 0.3·评分数/最大评分数，评分数不足 MinSupport 的书不进入榜单。
// 趋势分 = 0.6·窗口均分 + 0.4·窗口评分数/最大窗口评分数。
func FitPopularity(books []core.Book, ratings []core.Rating, now time.Time, cfg PopularityConfig) *Popularity {
	p := &Popularity{index: make(map[int64]float64)}

	maxCount := 0
	for _, b := range books {
		if b.RatingCount >= cfg.MinSupport && b.RatingCount > maxCount {
			maxCount = b.RatingCount
		}
	}
	for _, b := range books {
		if b.RatingCount < cfg.MinSupport || maxCount == 0 {
			continue
		}
		score := 0.7*b.AverageRating + 0.3*float64(b.RatingCount)/float64(maxCount)
		p.overall = append(p.overall, core.Scored{ID: b.ID, Score: score})
	}
	p.overall = topScored(p.overall, cfg.Cap)
	for _, s := range p.overall {
		p.index[s.ID] = s.Score
	}

	p.trending = fitTrending(ratings, now, cfg)
	if len(p.trending) < cfg.MinTrendingItems {
		n := len(p.overall)
		if cfg.TrendingCap > 0 && n > cfg.TrendingCap {
			n = cfg.TrendingCap
		}
		p.trending = append([]core.Scored(nil), p.overall[:n]...)
	}
	return p
}

func fitTrending(ratings []core.Rating, now time.Time, cfg PopularityConfig) []core.Scored {
	since := now.Add(-cfg.TrendingWindow)
	type agg struct {
		sum   float64
		count int
	}
	window := make(map[int64]*agg)
	for _, r := range dedupRatings(ratings) {
		if !r.CreatedAt.After(since) || r.CreatedAt.After(now) {
			continue
		}
		a := window[r.BookID]
		if a == nil {
			a = &agg{}
			window[r.BookID] = a
		}
		a.sum += r.Rating
		a.count++
	}

	maxCount := 0
	for _, a := range window {
		if a.count >= cfg.TrendingMinCount && a.count > maxCount {
			maxCount = a.count
		}
	}
	var out []core.Scored
	for id, a := range window {
		if a.count < cfg.TrendingMinCount {
			continue
		}
		mean := a.sum / float64(a.count)
		out = append(out, core.Scored{ID: id, Score: 0.6*mean + 0.4*float64(a.count)/float64(maxCount)})
	}
	return topScored(out, cfg.TrendingCap)
}

func (p *Popularity) Name() string { return "popularity" }

// Overall 返回热门榜（只读，调用方不得修改）。
func (p *Popularity) Overall() []core.Scored { return p.overall }

// Trending 返回趋势榜（只读）。
func (p *Popularity) Trending() []core.Scored { return p.trending }

// Score 返回热门分；不在榜单中的书没有分数。
func (p *Popularity) Score(id int64) (float64, bool) {
	s, ok := p.index[id]
	return s, ok
}
