package recall

import (
	"context"
	"fmt"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// TrackSource 按 (名称, 艺人, 年份) 三元组精确检索：
// 每个三元组一次搜索，取首个命中后再拉完整曲目对象。
// 无命中的三元组静默跳过（与归一化的 best-effort 策略一致）。
type TrackSource struct {
	Catalog core.CatalogClient
	Seeds   []core.TrackSeed
}

func (s *TrackSource) Name() string { return "recall.track" }

func (s *TrackSource) Resolve(ctx context.Context) ([]core.RawTrack, error) {
	var all []core.RawTrack
	for _, seed := range s.Seeds {
		query := fmt.Sprintf("track:%s artist:%s", seed.Name, seed.Artist)
		if seed.Year > 0 {
			query = fmt.Sprintf("%s year:%d", query, seed.Year)
		}
		hits, err := s.Catalog.SearchTracks(ctx, query)
		if err != nil {
			return nil, wrapUpstream("track search "+seed.Name, err)
		}
		if len(hits) == 0 {
			continue
		}
		track, err := s.Catalog.Track(ctx, hits[0].Unwrap().ID)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, wrapUpstream("track fetch "+seed.Name, err)
		}
		all = append(all, track)
	}
	return all, nil
}

// LibrarySource 解析用户收藏曲目（包裹形态，目录实现内部翻页取全量）。
type LibrarySource struct {
	Catalog core.CatalogClient
}

func (s *LibrarySource) Name() string { return "recall.library" }

func (s *LibrarySource) Resolve(ctx context.Context) ([]core.RawTrack, error) {
	tracks, err := s.Catalog.SavedTracks(ctx)
	if err != nil {
		return nil, wrapUpstream("saved tracks", err)
	}
	return tracks, nil
}
