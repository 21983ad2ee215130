// Package rank 对静态候选库做相似度排序：用预拟合的 scaler 把候选库与
// 口味向量放到同一尺度，再按余弦距离取 Top-K。
//
// 距离选余弦（1 − 余弦相似度，值域 [0,2]）：原始音频特征量纲差异巨大，
// scaler 只做中心化/缩放、不保证单位长度，方向敏感而幅度不敏感的度量
// 最贴合这组特征。
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// DefaultTopK 是未指定 k 时的推荐条数。
const DefaultTopK = 10

// Ranker 持有候选库与 scaler（构造时注入，只读），请求期对口味向量排序。
// 候选库的缩放矩阵在构造时一次算好，之后可安全并发使用。
type Ranker struct {
	scaler  core.Scaler
	library *core.TrackTable
	scaled  [][]float64
}

// NewRanker 构造 Ranker。
// release_year 不合法（<=0）的候选行在此处剔除；
// scaler 列集合与候选库不一致报 SCHEMA_MISMATCH。
func NewRanker(scaler core.Scaler, library *core.TrackTable) (*Ranker, error) {
	if scaler == nil || library == nil {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			"ranker: scaler and library are required")
	}

	gated := core.NewTrackTable(library.Len())
	for _, tr := range library.Rows() {
		if tr.ReleaseYear <= 0 {
			continue
		}
		gated.Append(tr)
	}
	if gated.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeEmptyInput,
			"ranker: candidate library has no usable rows")
	}

	matrix, err := gated.Matrix(scaler.Columns())
	if err != nil {
		return nil, err
	}
	scaled, err := scaler.Transform(matrix)
	if err != nil {
		return nil, err
	}

	return &Ranker{
		scaler:  scaler,
		library: gated,
		scaled:  scaled,
	}, nil
}

// LibrarySize 返回质量闸之后的候选数。
func (r *Ranker) LibrarySize() int {
	return r.library.Len()
}

// Rank 返回与口味向量最近的 min(k, library_size) 条候选：
// 完整记录 + 同序的展示投影，距离升序，相同距离按库内原始顺序（稳定排序）。
// k<=0 时取 DefaultTopK。
func (r *Ranker) Rank(taste core.TasteVector, k int) ([]core.Track, []core.DisplayRow, error) {
	if err := r.checkSchema(taste); err != nil {
		return nil, nil, err
	}

	scaledTaste, err := r.scaler.Transform([][]float64{taste.Values})
	if err != nil {
		return nil, nil, err
	}
	center := scaledTaste[0]

	distances := make([]float64, len(r.scaled))
	for i, row := range r.scaled {
		distances[i] = cosineDistance(center, row)
	}

	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	// 稳定排序保证距离并列时按库内原始顺序返回，结果可复现
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k <= 0 {
		k = DefaultTopK
	}
	if k > len(order) {
		k = len(order)
	}

	rows := r.library.Rows()
	full := make([]core.Track, 0, k)
	display := make([]core.DisplayRow, 0, k)
	for _, idx := range order[:k] {
		full = append(full, rows[idx])
		display = append(display, rows[idx].Display())
	}
	return full, display, nil
}

// checkSchema 校验口味向量与 scaler 拟合列严格一致（集合与顺序）。
// 不一致意味着构建期工件与请求期代码脱节，属调用方契约违反。
func (r *Ranker) checkSchema(taste core.TasteVector) error {
	cols := r.scaler.Columns()
	if len(taste.Columns) != len(cols) {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
			fmt.Sprintf("ranker: taste vector has %d columns, scaler fit on %d",
				len(taste.Columns), len(cols)))
	}
	for i, c := range cols {
		if taste.Columns[i] != c {
			return core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
				fmt.Sprintf("ranker: column %d is %q, scaler fit on %q", i, taste.Columns[i], c))
		}
	}
	if len(taste.Values) != len(cols) {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeSchemaMismatch,
			"ranker: taste vector values/columns length mismatch")
	}
	return nil
}

// cosineDistance = 1 − 余弦相似度。任一向量为零向量时相似度按 0 处理（距离 1）。
func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
