package core

// AudioFeatures 是一条曲目的音频特征向量：目录方（Spotify 风格 API）
// 对曲目声学特质的数值化描述。字段顺序与 AudioFeatureColumns 保持一致。
type AudioFeatures struct {
	Danceability     float64
	Energy           float64
	Key              float64
	Loudness         float64
	Mode             float64
	Speechiness      float64
	Acousticness     float64
	Instrumentalness float64
	Liveness         float64
	Valence          float64
	Tempo            float64
	DurationMS       float64
	TimeSignature    float64
}

// AudioFeatureColumns 是音频特征列的固定顺序。
// 推荐库 CSV、scaler 工件与请求期向量都以此顺序对齐，不可随意调整。
var AudioFeatureColumns = []string{
	"danceability",
	"energy",
	"key",
	"loudness",
	"mode",
	"speechiness",
	"acousticness",
	"instrumentalness",
	"liveness",
	"valence",
	"tempo",
	"duration_ms",
	"time_signature",
}

// ModelColumns 是参与建模的全部数值列（含音频特征之外的数值元数据）。
// 顺序即推荐库与 scaler 拟合时的列顺序。
var ModelColumns = buildModelColumns()

func buildModelColumns() []string {
	cols := []string{"popularity", "explicit"}
	cols = append(cols, AudioFeatureColumns...)
	return append(cols, "release_year")
}

// Track 是归一化后的一条曲目记录：元数据 + 音频特征 + 流派集合。
// ID 是元数据与特征两侧 join 的唯一键。
type Track struct {
	ID          string
	TrackName   string
	Artist      string
	ArtistURI   string
	AlbumURI    string
	Album       string
	ReleaseDate string
	ReleaseYear int
	Popularity  int
	Explicit    float64 // 已归一化为 0/1
	Genres      []string
	Features    AudioFeatures
}

// NumericValue 按列名取出建模数值。列名不在 ModelColumns 中时返回 (0, false)。
func (t *Track) NumericValue(column string) (float64, bool) {
	switch column {
	case "popularity":
		return float64(t.Popularity), true
	case "explicit":
		return t.Explicit, true
	case "danceability":
		return t.Features.Danceability, true
	case "energy":
		return t.Features.Energy, true
	case "key":
		return t.Features.Key, true
	case "loudness":
		return t.Features.Loudness, true
	case "mode":
		return t.Features.Mode, true
	case "speechiness":
		return t.Features.Speechiness, true
	case "acousticness":
		return t.Features.Acousticness, true
	case "instrumentalness":
		return t.Features.Instrumentalness, true
	case "liveness":
		return t.Features.Liveness, true
	case "valence":
		return t.Features.Valence, true
	case "tempo":
		return t.Features.Tempo, true
	case "duration_ms":
		return t.Features.DurationMS, true
	case "time_signature":
		return t.Features.TimeSignature, true
	case "release_year":
		return float64(t.ReleaseYear), true
	default:
		return 0, false
	}
}

// Vector 按给定列顺序导出数值向量。未知列报 SCHEMA_MISMATCH。
func (t *Track) Vector(columns []string) ([]float64, error) {
	out := make([]float64, 0, len(columns))
	for _, col := range columns {
		v, ok := t.NumericValue(col)
		if !ok {
			return nil, NewDomainError(ModuleTable, ErrorCodeSchemaMismatch,
				"unknown numeric column: "+col)
		}
		out = append(out, v)
	}
	return out, nil
}

// DisplayRow 是面向前端协作方的展示投影：只保留可读的三列。
type DisplayRow struct {
	TrackName   string
	Artist      string
	ReleaseYear int
}

// Display 返回曲目的展示投影。
func (t *Track) Display() DisplayRow {
	return DisplayRow{
		TrackName:   t.TrackName,
		Artist:      t.Artist,
		ReleaseYear: t.ReleaseYear,
	}
}

// TrackTable 是按 ID 去重的有序曲目表，列 schema 固定。
// 同一 ID 只保留首次出现的行（first-wins），与归一化的去重策略一致。
type TrackTable struct {
	rows  []Track
	index map[string]int
}

func NewTrackTable(capacity int) *TrackTable {
	return &TrackTable{
		rows:  make([]Track, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

// Append 追加一行。ID 已存在时忽略并返回 false。
func (t *TrackTable) Append(tr Track) bool {
	if tr.ID == "" {
		return false
	}
	if _, ok := t.index[tr.ID]; ok {
		return false
	}
	t.index[tr.ID] = len(t.rows)
	t.rows = append(t.rows, tr)
	return true
}

// Rows 返回底层行切片（调用方不应修改）。
func (t *TrackTable) Rows() []Track {
	if t == nil {
		return nil
	}
	return t.rows
}

func (t *TrackTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Contains 判断 ID 是否已在表中。
func (t *TrackTable) Contains(id string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[id]
	return ok
}

// Matrix 按列顺序导出数值矩阵，一行对应一条曲目。
func (t *TrackTable) Matrix(columns []string) ([][]float64, error) {
	out := make([][]float64, 0, t.Len())
	for i := range t.rows {
		vec, err := t.rows[i].Vector(columns)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// TasteVector 是聚合后的口味信号：每个建模列一个分量，列序与候选库对齐。
// 生命周期仅限一次推荐请求，不做持久化。
type TasteVector struct {
	Columns []string
	Values  []float64
}

// Recommendation 是一次推荐请求的完整结果。
type Recommendation struct {
	// Seeds 是种子解析后的归一化曲目表
	Seeds *TrackTable

	// Full 是 Top-K 推荐的完整记录（全部列），按距离升序
	Full []Track

	// Display 是与 Full 同序的展示投影
	Display []DisplayRow

	// Skipped 记录归一化阶段各类丢弃的计数，用于观测
	Skipped map[string]int
}
