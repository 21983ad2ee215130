package rank

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// StandardScaler 是预拟合的标准化工件：对每列做 (x - mean) / scale。
// 在候选库构建期拟合并序列化为 JSON，请求期只读使用，可安全并发。
//
// 工件格式：
//
//	{
//	  "columns": ["popularity", "explicit", "danceability", ...],
//	  "mean":    [42.1, 0.2, 0.55, ...],
//	  "scale":   [18.3, 0.4, 0.17, ...]
//	}
type StandardScaler struct {
	ColumnNames []string  `json:"columns"`
	Mean        []float64 `json:"mean"`
	Scale       []float64 `json:"scale"`
}

var _ core.Scaler = (*StandardScaler)(nil)

// LoadScaler 从 JSON 文件加载拟合好的 scaler 工件。
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scaler artifact: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *StandardScaler) validate() error {
	if len(s.ColumnNames) == 0 {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
			"scaler artifact: no columns")
	}
	if len(s.Mean) != len(s.ColumnNames) || len(s.Scale) != len(s.ColumnNames) {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("scaler artifact: %d columns but %d means / %d scales",
				len(s.ColumnNames), len(s.Mean), len(s.Scale)))
	}
	return nil
}

func (s *StandardScaler) Columns() []string {
	return s.ColumnNames
}

// Transform 逐行应用 (x - mean) / scale。scale 为 0 的列退化为只做中心化
// （与 sklearn StandardScaler 对常量列的行为一致）。
// 行宽与列数不一致报 SCHEMA_MISMATCH。
func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(s.ColumnNames) {
			return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
				fmt.Sprintf("scaler: row %d has %d values, artifact fit on %d columns",
					i, len(row), len(s.ColumnNames)))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			centered := v - s.Mean[j]
			if s.Scale[j] != 0 {
				centered /= s.Scale[j]
			}
			scaled[j] = centered
		}
		out[i] = scaled
	}
	return out, nil
}

// Fit 在给定矩阵上拟合标准化参数（总体标准差，ddof=0，与 sklearn 一致）。
// 只在候选库构建与测试中使用；服务路径永远消费已拟合的工件。
func Fit(matrix [][]float64, columns []string) (*StandardScaler, error) {
	if len(matrix) == 0 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeEmptyInput,
			"scaler fit: empty matrix")
	}
	n := float64(len(matrix))
	mean := make([]float64, len(columns))
	for _, row := range matrix {
		if len(row) != len(columns) {
			return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
				"scaler fit: ragged matrix")
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, len(columns))
	for _, row := range matrix {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
	}

	return &StandardScaler{
		ColumnNames: append([]string(nil), columns...),
		Mean:        mean,
		Scale:       scale,
	}, nil
}

// Save 把工件序列化到 JSON 文件。
func (s *StandardScaler) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scaler artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scaler artifact: %w", err)
	}
	return nil
}
