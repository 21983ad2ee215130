// Package normalize 把目录方返回的异构原始曲目记录整理为统一的数值特征表。
//
// 策略是 best-effort 抽取：缺关键字段、年份不可解析、音频特征缺失的记录
// 都被丢弃并计数，不产出半行数据。
package normalize

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// DefaultBatchSize 是音频特征批量查询的默认批大小。
// 目录 API 对单次批量查询有上限（通常 100 个 id）。
const DefaultBatchSize = 100

// SkipReason 标记一条原始记录被丢弃的原因。
type SkipReason = string

const (
	SkipMissingMetadata SkipReason = "missing_metadata" // 缺 id/艺人/专辑等关键字段
	SkipBadReleaseYear  SkipReason = "bad_release_year" // release_date 解析不出合法年份
	SkipMissingFeatures SkipReason = "missing_features" // 特征源对该 id 返回空
	SkipDuplicate       SkipReason = "duplicate"        // 同 id 重复出现（first-wins）
)

// SkipReport 是各类丢弃的计数，供调用方观测使用。
type SkipReport map[SkipReason]int

func (r SkipReport) add(reason SkipReason) {
	r[reason]++
}

// Total 返回丢弃总数。
func (r SkipReport) Total() int {
	var n int
	for _, c := range r {
		n += c
	}
	return n
}

// Normalizer 是特征归一化器。
//
// 流程：unwrap → 抽取元数据 → 去重 → 批量取音频特征 → 按艺人取流派 → 组表。
// Features 与 Artists 的调用失败是请求级致命错误（上游已做重试）；
// 单条记录的抽取失败只计数不报错。
type Normalizer struct {
	Features core.AudioFeatureSource
	Artists  core.ArtistResolver

	// BatchSize 音频特征批大小，<=0 时取 DefaultBatchSize
	BatchSize int

	Logger *zap.Logger
}

func New(features core.AudioFeatureSource, artists core.ArtistResolver, opts ...Option) *Normalizer {
	n := &Normalizer{
		Features:  features,
		Artists:   artists,
		BatchSize: DefaultBatchSize,
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Option 是 Normalizer 的配置选项。
type Option func(*Normalizer)

// WithBatchSize 设置音频特征批大小。
func WithBatchSize(size int) Option {
	return func(n *Normalizer) {
		if size > 0 {
			n.BatchSize = size
		}
	}
}

// WithLogger 设置日志器。
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.Logger = logger
		}
	}
}

// Normalize 把原始曲目整理为去重后的 TrackTable。
// 返回的 SkipReport 永远非空，即使发生错误也反映已统计的丢弃。
func (n *Normalizer) Normalize(ctx context.Context, raw []core.RawTrack) (*core.TrackTable, SkipReport, error) {
	report := make(SkipReport)

	// 1. unwrap + 抽取元数据，按 id 去重（first-wins）
	table := core.NewTrackTable(len(raw))
	for i := range raw {
		tr, reason := extract(&raw[i])
		if reason != "" {
			report.add(reason)
			continue
		}
		if !table.Append(tr) {
			report.add(SkipDuplicate)
		}
	}

	// 2. 批量取音频特征；特征缺失的行丢弃（显式策略：禁止 NaN 流入聚合）
	withFeatures, err := n.joinAudioFeatures(ctx, table, report)
	if err != nil {
		return nil, report, err
	}

	// 3. 按去重后的 artist_uri 取流派，left-join 回表
	if err := n.joinGenres(ctx, withFeatures); err != nil {
		return nil, report, err
	}

	if report.Total() > 0 {
		n.Logger.Debug("normalize: skipped records",
			zap.Int("kept", withFeatures.Len()),
			zap.Any("skipped", map[SkipReason]int(report)))
	}
	return withFeatures, report, nil
}

// extract 做单条记录的 best-effort 抽取。
// 返回空 reason 表示成功；任何关键字段缺失都只产出 SkipReason。
func extract(raw *core.RawTrack) (core.Track, SkipReason) {
	t := raw.Unwrap()
	if t == nil || t.ID == "" || t.Name == "" {
		return core.Track{}, SkipMissingMetadata
	}
	if len(t.Artists) == 0 || t.Album == nil || t.Album.Name == "" {
		return core.Track{}, SkipMissingMetadata
	}

	year, ok := parseReleaseYear(t.Album.ReleaseDate)
	if !ok {
		return core.Track{}, SkipBadReleaseYear
	}

	explicit := 0.0
	if t.Explicit {
		explicit = 1.0
	}

	return core.Track{
		ID:          t.ID,
		TrackName:   t.Name,
		Artist:      t.Artists[0].Name,
		ArtistURI:   t.Artists[0].URI,
		AlbumURI:    t.Album.URI,
		Album:       t.Album.Name,
		ReleaseDate: t.Album.ReleaseDate,
		ReleaseYear: year,
		Popularity:  t.Popularity,
		Explicit:    explicit,
		Genres:      []string{},
	}, ""
}

// parseReleaseYear 宽松解析部分日期："2019" / "2019-07" / "2019-07-12"。
// 必须得到合法的 4 位年份，否则整条记录不可用于建模。
func parseReleaseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, '-'); i >= 0 {
		date = date[:i]
	}
	if len(date) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date)
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}

// joinAudioFeatures 分批查询特征并按 id join。
// 特征源返回的切片与 id 按下标对齐，nil 元素代表目录侧无数据。
func (n *Normalizer) joinAudioFeatures(ctx context.Context, table *core.TrackTable, report SkipReport) (*core.TrackTable, error) {
	rows := table.Rows()
	if len(rows) == 0 {
		return table, nil
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	batchSize := n.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	features := make([]*core.AudioFeatures, 0, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := n.Features.AudioFeatures(ctx, ids[start:end])
		if err != nil {
			return nil, core.NewDomainError(core.ModuleNormalize, core.ErrorCodeUpstream,
				fmt.Sprintf("audio features batch [%d:%d]: %v", start, end, err))
		}
		if len(batch) != end-start {
			return nil, core.NewDomainError(core.ModuleNormalize, core.ErrorCodeUpstream,
				fmt.Sprintf("audio features batch [%d:%d]: got %d entries", start, end, len(batch)))
		}
		features = append(features, batch...)
	}

	out := core.NewTrackTable(len(rows))
	for i := range rows {
		if features[i] == nil {
			report.add(SkipMissingFeatures)
			continue
		}
		tr := rows[i]
		tr.Features = *features[i]
		out.Append(tr)
	}
	return out, nil
}

// joinGenres 对每个去重后的 artist_uri 查一次流派，left-join 回所有行。
// 查询失败按空流派处理，保证 genres 列永远有值。
func (n *Normalizer) joinGenres(ctx context.Context, table *core.TrackTable) error {
	rows := table.Rows()
	genresByURI := make(map[string][]string)
	for i := range rows {
		uri := rows[i].ArtistURI
		if uri == "" {
			continue
		}
		if _, ok := genresByURI[uri]; ok {
			continue
		}
		genres, err := n.Artists.ArtistGenres(ctx, uri)
		if err != nil {
			n.Logger.Warn("normalize: artist genres lookup failed",
				zap.String("artist_uri", uri), zap.Error(err))
			genres = nil
		}
		if genres == nil {
			genres = []string{}
		}
		genresByURI[uri] = genres
	}

	for i := range rows {
		if g, ok := genresByURI[rows[i].ArtistURI]; ok {
			rows[i].Genres = g
		}
	}
	return nil
}
