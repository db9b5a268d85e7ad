package dsl

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/cel-go/cel"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/utils"
)

// maxPrograms 是编译缓存的容量；表达式来自请求，缓存必须有界。
const maxPrograms = 1024

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 缓存已编译的表达式：expr -> cel.Program
	programs     *ristretto.Cache[string, cel.Program]
	programsOnce sync.Once
)

func programCache() *ristretto.Cache[string, cel.Program] {
	programsOnce.Do(func() {
		c, err := ristretto.NewCache(&ristretto.Config[string, cel.Program]{
			NumCounters: maxPrograms * 10,
			MaxCost:     maxPrograms,
			BufferItems: 64,
			// 每个表达式计 1，不计内部开销
			IgnoreInternalCost: true,
		})
		if err != nil {
			// 配置是常量，只在参数非法时出错
			panic(fmt.Sprintf("dsl: program cache: %v", err))
		}
		programs = c
	})
	return programs
}

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("book", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Compile 编译并缓存表达式。可用于在请求入口提前校验表达式。
// 缓存写入是异步的，刚编译的表达式可能被再编译一次。
func Compile(expr string) (cel.Program, error) {
	cache := programCache()
	if prg, ok := cache.Get(expr); ok {
		return prg, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	cache.Set(expr, prg, 1)
	return prg, nil
}

// Eval 是书目资格表达式的解释器，使用 CEL (Common Expression Language) 实现。
//
// 可用变量：
//   - item.id / item.score / item.sources
//   - book.title / book.author / book.genres / book.average_rating / book.rating_count / book.year
//   - label.recall_source 等（label 的 value）
//   - rctx.user_id / rctx.params
//
// 示例：
//   - `book.rating_count >= 10`
//   - `"fantasy" in book.genres && item.score > 0.5`
//   - `label.recall_source.contains("content")`
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 执行表达式，返回布尔结果；空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 访问不存在的 key 会报错，应先用 label.key != null 判断
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{}, len(e.item.Labels))
	for k, v := range e.item.Labels {
		labels[k] = v.Value
	}

	var sources []string
	if lbl, ok := e.item.Labels["recall_source"]; ok {
		sources = utils.SplitValue(lbl)
	}
	item := map[string]interface{}{
		"id":      e.item.ID,
		"score":   e.item.Score,
		"sources": sources,
	}

	book := map[string]interface{}{}
	if b := e.item.Book; b != nil {
		genres := b.Genres
		if genres == nil {
			genres = []string{}
		}
		book = map[string]interface{}{
			"id":             b.ID,
			"title":          b.Title,
			"author":         b.Author,
			"genres":         genres,
			"average_rating": b.AverageRating,
			"rating_count":   int64(b.RatingCount),
			"year":           int64(b.CreatedAt.Year()),
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		params := e.rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rctx = map[string]interface{}{
			"user_id": e.rctx.UserID,
			"params":  params,
		}
	}

	return map[string]interface{}{
		"item":  item,
		"book":  book,
		"label": labels,
		"rctx":  rctx,
	}
}
