package spotify

import (
	"context"
	"encoding/json"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

const (
	featureKeyPrefix = "catalog:af:"
	genresKeyPrefix  = "catalog:genres:"
)

// AudioFeatures 批量获取曲目音频特征（实现 core.AudioFeatureSource 接口）。
// 返回切片与 ids 按下标对齐；目录侧无特征的曲目对应位置为 nil。
// 配置了 Store 时先查缓存，只对未命中的 id 发起目录调用。
func (c *Client) AudioFeatures(ctx context.Context, ids []string) ([]*core.AudioFeatures, error) {
	out := make([]*core.AudioFeatures, len(ids))
	missing := make([]string, 0, len(ids))
	missingIdx := make(map[string][]int, len(ids))

	if c.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = featureKeyPrefix + id
		}
		cached, err := c.cache.BatchGet(ctx, keys)
		if err != nil {
			// 缓存故障降级为全量回源
			c.logger.Warn("feature cache read failed", zap.Error(err))
			cached = nil
		}
		for i, id := range ids {
			if raw, ok := cached[keys[i]]; ok {
				var f core.AudioFeatures
				if json.Unmarshal(raw, &f) == nil {
					out[i] = &f
					continue
				}
			}
			if len(missingIdx[id]) == 0 {
				missing = append(missing, id)
			}
			missingIdx[id] = append(missingIdx[id], i)
		}
	} else {
		for i, id := range ids {
			if len(missingIdx[id]) == 0 {
				missing = append(missing, id)
			}
			missingIdx[id] = append(missingIdx[id], i)
		}
	}

	if len(missing) == 0 {
		return out, nil
	}

	sids := make([]spotify.ID, len(missing))
	for i, id := range missing {
		sids[i] = spotify.ID(id)
	}
	var feats []*spotify.AudioFeatures
	err := c.retry.do(ctx, func() error {
		var err error
		feats, err = c.api.GetAudioFeatures(ctx, sids...)
		return err
	})
	if err != nil {
		return nil, c.upstream("audio features", err)
	}
	if len(feats) != len(missing) {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUpstream,
			"audio features: response length mismatch")
	}

	toCache := make(map[string][]byte, len(missing))
	for i, f := range feats {
		if f == nil {
			continue
		}
		mapped := mapAudioFeatures(f)
		for _, idx := range missingIdx[missing[i]] {
			out[idx] = mapped
		}
		if c.cache != nil {
			if raw, err := json.Marshal(mapped); err == nil {
				toCache[featureKeyPrefix+missing[i]] = raw
			}
		}
	}
	if c.cache != nil && len(toCache) > 0 {
		if err := c.cache.BatchSet(ctx, toCache, c.ttl); err != nil {
			c.logger.Warn("feature cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// ArtistGenres 按 artist_uri 查询艺人流派（实现 core.ArtistResolver 接口）。
// 艺人无流派数据时返回空集而非错误。
func (c *Client) ArtistGenres(ctx context.Context, artistURI string) ([]string, error) {
	key := genresKeyPrefix + artistURI
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, key); err == nil {
			var genres []string
			if json.Unmarshal(raw, &genres) == nil {
				return genres, nil
			}
		}
	}

	var artist *spotify.FullArtist
	err := c.retry.do(ctx, func() error {
		var err error
		artist, err = c.api.GetArtist(ctx, spotify.ID(artistURIToID(artistURI)))
		return err
	})
	if err != nil {
		return nil, c.upstream("artist genres", err)
	}

	genres := artist.Genres
	if genres == nil {
		genres = []string{}
	}
	if c.cache != nil {
		if raw, err := json.Marshal(genres); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
				c.logger.Warn("genre cache write failed", zap.Error(err))
			}
		}
	}
	return genres, nil
}

// mapAudioFeatures 把 SDK 音频特征映射为领域类型
func mapAudioFeatures(f *spotify.AudioFeatures) *core.AudioFeatures {
	return &core.AudioFeatures{
		Danceability:     float64(f.Danceability),
		Energy:           float64(f.Energy),
		Key:              float64(f.Key),
		Loudness:         float64(f.Loudness),
		Mode:             float64(f.Mode),
		Speechiness:      float64(f.Speechiness),
		Acousticness:     float64(f.Acousticness),
		Instrumentalness: float64(f.Instrumentalness),
		Liveness:         float64(f.Liveness),
		Valence:          float64(f.Valence),
		Tempo:            float64(f.Tempo),
		DurationMS:       float64(f.Duration),
		TimeSignature:    float64(f.TimeSignature),
	}
}
