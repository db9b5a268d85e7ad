package core

import "time"

// UserProfile 是一次请求中可见的用户画像。
//
// 本系统没有人口统计属性，画像只包含：
//   - 评分历史（按时间排序，最近的在最后），用于冷启动判断与种子选择
//   - 情境标签（时段 morning / night / weekend ...）
//   - 性格标签（问卷结果 adventurous / analytical ...）
type UserProfile struct {
	UserID int64

	// History 是已评分的书目 ID，最近的在最后
	History []int64

	ContextTag  string
	Personality string

	UpdateTime time.Time
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID int64, history []int64) *UserProfile {
	return &UserProfile{
		UserID:     userID,
		History:    history,
		UpdateTime: time.Now(),
	}
}

// IsColdStart 用户没有任何评分历史。
func (u *UserProfile) IsColdStart() bool {
	return u == nil || len(u.History) == 0
}

// LastN 返回最近评分的 n 本书，顺序与 History 一致。
func (u *UserProfile) LastN(n int) []int64 {
	if u == nil || n <= 0 {
		return nil
	}
	if len(u.History) <= n {
		return u.History
	}
	return u.History[len(u.History)-n:]
}
