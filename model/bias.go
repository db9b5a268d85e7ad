package model

import "github.com/rushteam/bookrec/core"

// BiasModel 是基于偏置的评分预测：全局均值 + 用户偏置 + 书目偏置。
//
// 用户偏置对同一用户的所有候选是常数，因此只影响预测值，不影响该用户的相对排序；
// 区分候选的只有书目偏置。
type BiasModel struct {
	global    float64
	userMean  map[int64]float64
	itemMean  map[int64]float64
	itemCount map[int64]int
	n         int
}

// FitBias 拟合全局/用户/书目均值。重复评分以最后一次为准。
// 没有任何评分时全局均值取评分刻度中点 3.0。
func FitBias(ratings []core.Rating) *BiasModel {
	m := &BiasModel{
		global:    (core.MinRating + core.RatingScale) / 2,
		userMean:  make(map[int64]float64),
		itemMean:  make(map[int64]float64),
		itemCount: make(map[int64]int),
	}
	rs := dedupRatings(ratings)
	if len(rs) == 0 {
		return m
	}

	var total float64
	userSum := make(map[int64]float64)
	userCnt := make(map[int64]int)
	itemSum := make(map[int64]float64)
	for _, r := range rs {
		total += r.Rating
		userSum[r.UserID] += r.Rating
		userCnt[r.UserID]++
		itemSum[r.BookID] += r.Rating
		m.itemCount[r.BookID]++
	}
	m.n = len(rs)
	m.global = total / float64(len(rs))
	for u, s := range userSum {
		m.userMean[u] = s / float64(userCnt[u])
	}
	for i, s := range itemSum {
		m.itemMean[i] = s / float64(m.itemCount[i])
	}
	return m
}

func (m *BiasModel) Name() string { return "collaborative" }

// GlobalMean 返回全局均分。
func (m *BiasModel) GlobalMean() float64 { return m.global }

// Len 返回参与拟合的评分数。
func (m *BiasModel) Len() int { return m.n }

// HasUser 判断用户是否有评分。
func (m *BiasModel) HasUser(userID int64) bool {
	_, ok := m.userMean[userID]
	return ok
}

// UserBias 返回用户偏置，未知用户为 0。
func (m *BiasModel) UserBias(userID int64) float64 {
	if mean, ok := m.userMean[userID]; ok {
		return mean - m.global
	}
	return 0
}

// ItemBias 返回书目偏置，未知书目为 0。
func (m *BiasModel) ItemBias(bookID int64) float64 {
	if mean, ok := m.itemMean[bookID]; ok {
		return mean - m.global
	}
	return 0
}

// ItemMean 返回书目在评分数据中的均分与评分数。
func (m *BiasModel) ItemMean(bookID int64) (float64, int, bool) {
	mean, ok := m.itemMean[bookID]
	return mean, m.itemCount[bookID], ok
}

// Predict 预测评分，结果截断到 [1,5]。
func (m *BiasModel) Predict(userID, bookID int64) float64 {
	return clampRating(m.global + m.UserBias(userID) + m.ItemBias(bookID))
}

// Score 以全局视角（无用户偏置）给出书目的预测分。
func (m *BiasModel) Score(bookID int64) (float64, bool) {
	_, ok := m.itemMean[bookID]
	return clampRating(m.global + m.ItemBias(bookID)), ok
}

func clampRating(p float64) float64 {
	switch {
	case p < core.MinRating:
		return core.MinRating
	case p > core.RatingScale:
		return core.RatingScale
	}
	return p
}
