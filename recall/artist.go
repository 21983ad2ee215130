package recall

import (
	"context"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// ArtistSource 按艺人解析：艺人名搜索取首个命中，再拉取其热门曲目。
//
// 已知准确性局限：同名艺人（跨流派重名等）不做消歧，直接采用搜索首位。
// 搜索无命中的艺人名被跳过，不影响其余种子。
type ArtistSource struct {
	Catalog core.CatalogClient
	Artists []string
}

func (s *ArtistSource) Name() string { return "recall.artist" }

func (s *ArtistSource) Resolve(ctx context.Context) ([]core.RawTrack, error) {
	var all []core.RawTrack
	for _, name := range s.Artists {
		artist, err := s.Catalog.SearchArtist(ctx, name)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, wrapUpstream("artist search "+name, err)
		}
		top, err := s.Catalog.ArtistTopTracks(ctx, artist.ID)
		if err != nil {
			return nil, wrapUpstream("artist top tracks "+name, err)
		}
		all = append(all, top...)
	}
	return all, nil
}
