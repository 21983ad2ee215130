package recall

import (
	"context"
	"fmt"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// GenreSource 按流派搜索曲目：每个流派一次 `genre:<g>` 搜索，收集全部命中。
type GenreSource struct {
	Catalog core.CatalogClient
	Genres  []string
}

func (s *GenreSource) Name() string { return "recall.genre" }

func (s *GenreSource) Resolve(ctx context.Context) ([]core.RawTrack, error) {
	var all []core.RawTrack
	for _, genre := range s.Genres {
		hits, err := s.Catalog.SearchTracks(ctx, fmt.Sprintf("genre:%s", genre))
		if err != nil {
			return nil, wrapUpstream("genre search "+genre, err)
		}
		all = append(all, hits...)
	}
	return all, nil
}

func wrapUpstream(op string, err error) error {
	if domainErr := core.GetDomainError(err); domainErr != nil {
		return err
	}
	return core.NewDomainError(core.ModuleRecall, core.ErrorCodeUpstream,
		fmt.Sprintf("recall: %s: %v", op, err))
}
