package mood

import (
	"strings"

	"github.com/rushteam/bookrec/core"
)

// hitMultiplier 是每个命中关键词贡献的分值。
const hitMultiplier = 2.0

// keywords 是每个维度的固定关键词表。
var keywords = [core.MoodDims][]string{
	Happy:      {"joy", "happy", "cheerful", "delight", "smile", "laughter", "celebration"},
	Sad:        {"sad", "tragic", "sorrow", "grief", "loss", "melancholy", "tears"},
	Calm:       {"calm", "peaceful", "serene", "tranquil", "quiet", "gentle", "soothing"},
	Thrilling:  {"thriller", "suspense", "action", "adventure", "exciting", "intense", "fast-paced"},
	Dark:       {"dark", "grim", "horror", "sinister", "disturbing", "macabre", "ominous"},
	Funny:      {"funny", "humor", "comedy", "hilarious", "wit", "amusing", "entertaining"},
	Emotional:  {"emotional", "heartfelt", "moving", "touching", "poignant", "deep"},
	Optimistic: {"hope", "optimistic", "uplifting", "inspiring", "positive", "bright"},
}

// Keywords 返回某个维度的关键词（只读）。
func Keywords(d Dimension) []string {
	if d < 0 || int(d) >= core.MoodDims {
		return nil
	}
	return keywords[d]
}

// AutoTag 从自由文本估算情绪向量：每个维度统计出现过的关键词个数（子串匹配，每个关键词最多计一次），
// 乘以 2 后截断到 10。
//
// 这是启发式规则，不是学习得到的模型：不理解否定（"not happy" 也会命中 happy），
// 子串匹配也会误命中（"wit" 命中 "without"）。
func AutoTag(text string) core.MoodVector {
	lower := strings.ToLower(text)
	var v core.MoodVector
	for d, kws := range keywords {
		hits := 0
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		v[d] = clampValue(float64(hits) * hitMultiplier)
	}
	return v
}
