package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/winerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("wine", cel.DynType),
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
		// 允许 wine.quality >= 90 这种 double 与 int 字面量的比较
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的酒款过滤表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可并发多次求值。
//
// 可用变量：
//   - wine：id / title / producer / category / region / country / quality / price / has_price / style
//   - item：score
//   - label：各打分 Label 的 value，例如 label.taste_match
//   - rctx：scene / session_id / month / params
//
// 示例：
//   - `wine.country == "France" && wine.quality >= 90`
//   - `wine.has_price && wine.price < 30.0`
//   - `wine.style in ["red", "rose"]`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式，表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (e *Expr) String() string { return e.src }

// Match 对单个候选求值。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 label key 会报错，表达式应先判断 "key" in label
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	wine := map[string]any{}
	itemMap := map[string]any{"score": 0.0}
	labels := map[string]any{}

	if item != nil {
		itemMap["score"] = item.Score
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		if w := item.Wine; w != nil {
			wine = map[string]any{
				"id":          w.ID,
				"title":       w.Title,
				"producer":    w.Producer,
				"category":    w.Category,
				"region":      w.Region,
				"country":     w.Country,
				"quality":     w.Quality,
				"price":       w.PriceValue(),
				"has_price":   w.HasPrice(),
				"style":       string(w.Style),
				"description": w.Description,
			}
		}
	}

	ctxMap := map[string]any{
		"scene":      "",
		"session_id": "",
		"month":      int64(0),
		"params":     map[string]any{},
	}
	if rctx != nil {
		ctxMap["scene"] = rctx.Scene
		ctxMap["session_id"] = rctx.SessionID
		if !rctx.Now.IsZero() {
			ctxMap["month"] = int64(rctx.Now.Month())
		}
		if rctx.Params != nil {
			ctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"wine":  wine,
		"item":  itemMap,
		"label": labels,
		"rctx":  ctxMap,
	}
}
