// Package conv 提供请求参数 map[string]any 的类型转换工具。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64。YAML/JSON 解析常得到 int 或 float64，此处统一处理。
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	default:
		return 0, false
	}
}

// ConfigGet 从 map[string]any 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64IDs 从 map 中取一组 ID，兼容 []int64 / []any（JSON 数字为 float64）。
func ConfigGetInt64IDs(m map[string]any, key string) []int64 {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, e := range v {
			if id, ok := ToInt64(e); ok {
				out = append(out, id)
			}
		}
		return out
	default:
		return nil
	}
}

// ConfigGetInt64 从 map 中取整数，兼容 int / int64 / float64，取不到时返回 defaultVal。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if m == nil {
		return defaultVal
	}
	if v, ok := ToInt64(m[key]); ok {
		return v
	}
	return defaultVal
}

// ConfigGetFloat64 从 map 中取浮点数，兼容整数写法（YAML 中的 1 与 1.0）。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if m == nil {
		return defaultVal
	}
	if _, isBool := m[key].(bool); isBool {
		return defaultVal
	}
	if v, ok := ToFloat64(m[key]); ok {
		return v
	}
	return defaultVal
}
