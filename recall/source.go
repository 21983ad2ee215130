// Package recall 把用户种子解析为目录曲目。
// 每种种子变体对应一个 Source 策略；编排器顺序执行并 first-wins 合并。
package recall

import (
	"context"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// Source 表示一个可复用的种子解析源（流派/艺人/精确曲目/用户收藏）。
// Resolve 同步执行；单个种子解析不出结果时跳过，不中断其余种子。
type Source interface {
	Name() string
	Resolve(ctx context.Context) ([]core.RawTrack, error)
}

// Merge 按 ID 去重合并多个来源的结果，保留第一个出现的（first-wins）。
// 包裹形态的记录按内层曲目的 ID 判重。
func Merge(batches ...[]core.RawTrack) []core.RawTrack {
	var total int
	for _, b := range batches {
		total += len(b)
	}
	seen := make(map[string]struct{}, total)
	out := make([]core.RawTrack, 0, total)
	for _, batch := range batches {
		for _, raw := range batch {
			inner := raw.Unwrap()
			if inner == nil {
				continue
			}
			if inner.ID != "" {
				if _, ok := seen[inner.ID]; ok {
					continue
				}
				seen[inner.ID] = struct{}{}
			}
			out = append(out, raw)
		}
	}
	return out
}

// ForCriteria 按种子变体构造解析源。调用前应先 criteria.Validate()。
func ForCriteria(catalog core.CatalogClient, criteria core.SeedCriteria) (Source, error) {
	switch criteria.Kind() {
	case core.CriteriaGenres:
		return &GenreSource{Catalog: catalog, Genres: criteria.Genres}, nil
	case core.CriteriaArtists:
		return &ArtistSource{Catalog: catalog, Artists: criteria.Artists}, nil
	case core.CriteriaTracks:
		return &TrackSource{Catalog: catalog, Seeds: criteria.Tracks}, nil
	case core.CriteriaLibrary:
		return &LibrarySource{Catalog: catalog}, nil
	default:
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"recall: no seeds supplied")
	}
}
