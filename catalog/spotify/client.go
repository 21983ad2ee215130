// Package spotify 是 core.CatalogClient 的 Spotify Web API 实现。
//
// 设计原则：
//   - 领域层只看到 core 的接口与原始记录类型，目录 SDK 的类型不外泄
//   - 超时/重试/限流/翻页全部在本包内消化，调用方拿到的是同步阻塞语义
//   - 目录响应（音频特征、艺人流派）可选地写入 core.Store 缓存
package spotify

import (
	"context"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

const (
	// DefaultMarket 检索与热门曲目接口使用的市场
	DefaultMarket = "US"

	// DefaultPageLimit 搜索/翻页接口的单页大小
	DefaultPageLimit = 50
)

// Client 实现 core.CatalogClient、core.AudioFeatureSource 和 core.ArtistResolver。
type Client struct {
	api    *spotify.Client
	market string
	limit  int
	retry  retryPolicy
	cache  core.Store
	ttl    int
	logger *zap.Logger
}

type Option func(*Client)

// WithMarket 设置检索市场，默认 DefaultMarket
func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

// WithPageLimit 设置单页大小，默认 DefaultPageLimit
func WithPageLimit(limit int) Option {
	return func(c *Client) { c.limit = limit }
}

// WithStore 启用目录响应缓存，ttl 单位秒
func WithStore(store core.Store, ttl int) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
	}
}

// WithRetryPolicy 覆盖默认重试策略
func WithRetryPolicy(maxAttempts int, backoffMs int) Option {
	return func(c *Client) { c.retry = newRetryPolicy(maxAttempts, backoffMs) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient 用 client-credentials 流程创建目录客户端。
// 凭据无效时在此处失败，而不是等到第一次请求。
func NewClient(ctx context.Context, clientID, clientSecret string, opts ...Option) (*Client, error) {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUpstream,
			"catalog auth: "+err.Error())
	}
	httpClient := spotifyauth.New().Client(ctx, token)

	// SDK 自带限流重试（429 按 Retry-After 等待），瞬时错误由 retryPolicy 兜底
	c := &Client{
		api:    spotify.New(httpClient, spotify.WithRetry(true)),
		market: DefaultMarket,
		limit:  DefaultPageLimit,
		retry:  newRetryPolicy(0, 0),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchTracks 按 query 搜索曲目，返回一页命中
func (c *Client) SearchTracks(ctx context.Context, query string) ([]core.RawTrack, error) {
	var result *spotify.SearchResult
	err := c.retry.do(ctx, func() error {
		var err error
		result, err = c.api.Search(ctx, query, spotify.SearchTypeTrack,
			spotify.Limit(c.limit), spotify.Market(c.market))
		return err
	})
	if err != nil {
		return nil, c.upstream("search tracks", err)
	}
	if result.Tracks == nil {
		return []core.RawTrack{}, nil
	}
	out := make([]core.RawTrack, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		out = append(out, mapTrack(&result.Tracks.Tracks[i]))
	}
	return out, nil
}

// SearchArtist 按名称搜索艺人，取首个命中
func (c *Client) SearchArtist(ctx context.Context, name string) (core.RawArtist, error) {
	var result *spotify.SearchResult
	err := c.retry.do(ctx, func() error {
		var err error
		result, err = c.api.Search(ctx, name, spotify.SearchTypeArtist,
			spotify.Limit(1), spotify.Market(c.market))
		return err
	})
	if err != nil {
		return core.RawArtist{}, c.upstream("search artist", err)
	}
	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return core.RawArtist{}, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
			"artist not found: "+name)
	}
	a := result.Artists.Artists[0]
	return core.RawArtist{ID: string(a.ID), Name: a.Name, URI: string(a.URI)}, nil
}

// ArtistTopTracks 返回艺人的热门曲目
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]core.RawTrack, error) {
	var tracks []spotify.FullTrack
	err := c.retry.do(ctx, func() error {
		var err error
		tracks, err = c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market)
		return err
	})
	if err != nil {
		return nil, c.upstream("artist top tracks", err)
	}
	out := make([]core.RawTrack, 0, len(tracks))
	for i := range tracks {
		out = append(out, mapTrack(&tracks[i]))
	}
	return out, nil
}

// Track 按 ID 取完整曲目对象
func (c *Client) Track(ctx context.Context, id string) (core.RawTrack, error) {
	var track *spotify.FullTrack
	err := c.retry.do(ctx, func() error {
		var err error
		track, err = c.api.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market))
		return err
	})
	if err != nil {
		if isStatus(err, 404) {
			return core.RawTrack{}, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
				"track not found: "+id)
		}
		return core.RawTrack{}, c.upstream("get track", err)
	}
	return mapTrack(track), nil
}

// SavedTracks 返回当前用户收藏的全部曲目（包裹形态，内部翻页）。
// 需要携带用户授权的 token；client-credentials 凭据会得到 403。
func (c *Client) SavedTracks(ctx context.Context) ([]core.RawTrack, error) {
	var page *spotify.SavedTrackPage
	err := c.retry.do(ctx, func() error {
		var err error
		page, err = c.api.CurrentUsersTracks(ctx, spotify.Limit(c.limit))
		return err
	})
	if err != nil {
		return nil, c.upstream("saved tracks", err)
	}
	var out []core.RawTrack
	for {
		for i := range page.Tracks {
			inner := mapTrack(&page.Tracks[i].FullTrack)
			out = append(out, core.RawTrack{Track: &inner})
		}
		err = c.retry.do(ctx, func() error {
			return c.api.NextPage(ctx, page)
		})
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return nil, c.upstream("saved tracks page", err)
		}
	}
	return out, nil
}

// PlaylistTracks 返回歌单内全部曲目（包裹形态，内部翻页）
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]core.RawTrack, error) {
	var page *spotify.PlaylistItemPage
	err := c.retry.do(ctx, func() error {
		var err error
		page, err = c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(c.limit))
		return err
	})
	if err != nil {
		return nil, c.upstream("playlist tracks", err)
	}
	var out []core.RawTrack
	for {
		for i := range page.Items {
			// 歌单里可能混有播客单集，没有 Track 对象，跳过
			if page.Items[i].Track.Track == nil {
				continue
			}
			inner := mapTrack(page.Items[i].Track.Track)
			out = append(out, core.RawTrack{Track: &inner})
		}
		err = c.retry.do(ctx, func() error {
			return c.api.NextPage(ctx, page)
		})
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return nil, c.upstream("playlist tracks page", err)
		}
	}
	return out, nil
}

func (c *Client) upstream(op string, err error) error {
	if derr := core.GetDomainError(err); derr != nil {
		return err
	}
	c.logger.Warn("catalog call failed", zap.String("op", op), zap.Error(err))
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUpstream, op+": "+err.Error())
}

// mapTrack 把 SDK 曲目对象映射为领域原始记录
func mapTrack(t *spotify.FullTrack) core.RawTrack {
	artists := make([]core.RawArtist, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, core.RawArtist{
			ID:   string(a.ID),
			Name: a.Name,
			URI:  string(a.URI),
		})
	}
	return core.RawTrack{
		ID:      string(t.ID),
		Name:    t.Name,
		Artists: artists,
		Album: &core.RawAlbum{
			Name:        t.Album.Name,
			URI:         string(t.Album.URI),
			ReleaseDate: t.Album.ReleaseDate,
		},
		Popularity: int(t.Popularity),
		Explicit:   t.Explicit,
	}
}

// artistURIToID 从 "spotify:artist:<id>" 形态的 URI 取出裸 ID
func artistURIToID(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

var (
	_ core.CatalogClient      = (*Client)(nil)
	_ core.AudioFeatureSource = (*Client)(nil)
	_ core.ArtistResolver     = (*Client)(nil)
)
