package model

import "github.com/rushteam/bookrec/core"

const (
	// DefaultProfile 是唯一的画像分组。
	DefaultProfile = "default"

	// DemographicDefaultScore 是不在画像中的候选的原始分（评分刻度）。
	DemographicDefaultScore = 2.5
)

// Demographic 只有一个全局画像：评分数据中均分最高的前 N 本书。
// 系统不收集任何人口统计属性，因此不存在真正的分群。
type Demographic struct {
	profile []core.Scored
	index   map[int64]float64
}

// FitDemographic 取评分均分前 size 本书作为默认画像，均分相同按 ID 升序。
func FitDemographic(bias *BiasModel, size int) *Demographic {
	d := &Demographic{index: make(map[int64]float64)}
	for id, mean := range bias.itemMean {
		d.profile = append(d.profile, core.Scored{ID: id, Score: mean})
	}
	d.profile = topScored(d.profile, size)
	for _, s := range d.profile {
		d.index[s.ID] = s.Score
	}
	return d
}

func (d *Demographic) Name() string { return "demographic" }

// Profile 返回画像中的书目（只读）。group 被忽略，所有用户共用一个画像。
func (d *Demographic) Profile(string) []core.Scored { return d.profile }

// Score 返回候选的原始分：在画像中为其均分，否则为 DemographicDefaultScore。
func (d *Demographic) Score(id int64) (float64, bool) {
	if s, ok := d.index[id]; ok {
		return s, true
	}
	return DemographicDefaultScore, false
}
