// Package taste 把 N 条曲目的特征向量坍缩为一个"口味向量"：
// 对建模数值列逐列取算术平均，作为用户当前种子集合的聚合信号。
package taste

import (
	"fmt"
	"math"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// Aggregate 对表中所有行按列求均值，输出与 columns 同序的口味向量。
//
// 语义约束：
//   - 空表报 EMPTY_INPUT（至少需要 1 行）
//   - 标准 IEEE 浮点均值，不加权、不剔除离群点、不跳过 NaN
//   - 上游保证输入无 NaN；一旦检测到非有限值立即报 INVALID_INPUT，
//     绝不让 NaN 静默流入距离计算
func Aggregate(table *core.TrackTable, columns []string) (core.TasteVector, error) {
	if table.Len() == 0 {
		return core.TasteVector{}, core.NewDomainError(core.ModuleTaste, core.ErrorCodeEmptyInput,
			"taste: no tracks to aggregate")
	}

	matrix, err := table.Matrix(columns)
	if err != nil {
		return core.TasteVector{}, err
	}

	sums := make([]float64, len(columns))
	for rowIdx, row := range matrix {
		for j, v := range row {
			if !isFinite(v) {
				return core.TasteVector{}, core.NewDomainError(core.ModuleTaste, core.ErrorCodeInvalidInput,
					fmt.Sprintf("taste: non-finite value in column %q row %d", columns[j], rowIdx))
			}
			sums[j] += v
		}
	}

	n := float64(table.Len())
	values := make([]float64, len(columns))
	for j, s := range sums {
		values[j] = s / n
	}
	return core.TasteVector{
		Columns: append([]string(nil), columns...),
		Values:  values,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ColumnSummary 是单列的分布摘要，供前端协作方绘制特征分布使用。
type ColumnSummary struct {
	Column string
	Min    float64
	Mean   float64
	Max    float64
}

// Describe 输出逐列的 min/mean/max 摘要。空表报 EMPTY_INPUT。
// 只做数值汇总，任何展示决策都在协作方一侧。
func Describe(table *core.TrackTable, columns []string) ([]ColumnSummary, error) {
	if table.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleTaste, core.ErrorCodeEmptyInput,
			"taste: no tracks to describe")
	}

	matrix, err := table.Matrix(columns)
	if err != nil {
		return nil, err
	}

	out := make([]ColumnSummary, len(columns))
	for j, col := range columns {
		out[j] = ColumnSummary{Column: col, Min: math.Inf(1), Max: math.Inf(-1)}
		var sum float64
		for _, row := range matrix {
			v := row[j]
			sum += v
			if v < out[j].Min {
				out[j].Min = v
			}
			if v > out[j].Max {
				out[j].Max = v
			}
		}
		out[j].Mean = sum / float64(len(matrix))
	}
	return out, nil
}
