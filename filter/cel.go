package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/chrisJoyceDS/SongSuggest/core"
	"github.com/chrisJoyceDS/SongSuggest/pkg/conv"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("track", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// CELFilter 用 CEL (Common Expression Language) 表达式剔除候选。
// 表达式对每条候选求布尔值，true 表示剔除。
//
// 表达式语法（CEL 标准语法，track 为顶层变量）：
//   - track.explicit == 1.0                 → 剔除 explicit 曲目
//   - track.release_year < 1990.0          → 剔除 1990 年前的曲目
//   - track.tempo > 160.0 && track.energy > 0.9
//   - "jazz" in track.genres
//
// 数值字段统一为 double，流派为字符串列表，名称类字段为字符串。
type CELFilter struct {
	expr string
	prg  cel.Program
}

// NewCELFilter 编译表达式并缓存程序，之后可对任意多条候选求值。
func NewCELFilter(expr string) (*CELFilter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter expression: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &CELFilter{expr: expr, prg: prg}, nil
}

func (f *CELFilter) Name() string { return "filter.cel" }

func (f *CELFilter) ShouldFilter(track *core.Track) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{
		"track": buildInput(track),
	})
	if err != nil {
		return false, fmt.Errorf("eval filter expression: %w", err)
	}
	// 布尔表达式是常态，数值表达式按非零为真处理
	if result, ok := out.Value().(bool); ok {
		return result, nil
	}
	if n, ok := conv.ToFloat64(out.Value()); ok {
		return n != 0, nil
	}
	return false, fmt.Errorf("filter expression must return boolean, got %T", out.Value())
}

// buildInput 把曲目平铺成 CEL 可访问的 map：数值列 + 文本列 + genres。
func buildInput(track *core.Track) map[string]any {
	input := map[string]any{
		"id":         track.ID,
		"track_name": track.TrackName,
		"artist":     track.Artist,
		"album":      track.Album,
		"genres":     track.Genres,
	}
	for _, col := range core.ModelColumns {
		if v, ok := track.NumericValue(col); ok {
			input[col] = v
		}
	}
	return input
}
