package core

import "context"

// RawArtist 是目录返回的艺人引用（未归一化）。
type RawArtist struct {
	ID   string
	Name string
	URI  string
}

// RawAlbum 是目录返回的专辑引用（未归一化）。
// ReleaseDate 可能是部分日期："2019" / "2019-07" / "2019-07-12"。
type RawAlbum struct {
	Name        string
	URI         string
	ReleaseDate string
}

// RawTrack 是目录返回的原始曲目记录，结构异构且允许缺字段：
//   - 扁平形态：直接携带曲目字段
//   - 包裹形态：收藏/歌单条目把曲目嵌在 Track 字段里一层
//
// 归一化器负责 unwrap 与 best-effort 抽取；缺关键字段的记录被静默跳过。
type RawTrack struct {
	// Track 非空时为包裹形态，内层才是真正的曲目对象
	Track *RawTrack

	ID         string
	Name       string
	Artists    []RawArtist
	Album      *RawAlbum
	Popularity int
	Explicit   bool
}

// Unwrap 返回内层曲目对象；扁平形态返回自身。只处理一层包裹。
func (r *RawTrack) Unwrap() *RawTrack {
	if r == nil {
		return nil
	}
	if r.Track != nil {
		return r.Track
	}
	return r
}

// CatalogClient 是外部音乐目录协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（catalog/spotify）实现
//   - 所有方法阻塞式、同步执行；超时与重试由实现方内部处理
//   - 分页接口（SavedTracks/PlaylistTracks）由实现方循环 next 游标直至穷尽
type CatalogClient interface {
	// SearchTracks 按 query 搜索曲目，返回一页命中（实现方决定页大小）
	SearchTracks(ctx context.Context, query string) ([]RawTrack, error)

	// SearchArtist 按名称搜索艺人，取首个命中。
	// 已知局限：同名艺人不做消歧，直接取搜索首位。
	SearchArtist(ctx context.Context, name string) (RawArtist, error)

	// ArtistTopTracks 返回艺人的热门曲目
	ArtistTopTracks(ctx context.Context, artistID string) ([]RawTrack, error)

	// Track 按 ID 取完整曲目对象
	Track(ctx context.Context, id string) (RawTrack, error)

	// SavedTracks 返回当前用户收藏的全部曲目（包裹形态，内部翻页）
	SavedTracks(ctx context.Context) ([]RawTrack, error)

	// PlaylistTracks 返回歌单内全部曲目（包裹形态，内部翻页）
	PlaylistTracks(ctx context.Context, playlistID string) ([]RawTrack, error)
}

// AudioFeatureSource 是音频特征的查询接口。
// 返回值与 ids 按下标对齐；目录侧无此曲目特征时对应元素为 nil。
// 实现方：catalog/spotify（请求期实时查询）、featurestore（构建期物化的特征库）。
type AudioFeatureSource interface {
	AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error)
}

// ArtistResolver 按 artist_uri 查询艺人流派集合。
// 每个去重后的 artist_uri 只查一次；无流派数据返回空集，不返回错误。
type ArtistResolver interface {
	ArtistGenres(ctx context.Context, artistURI string) ([]string, error)
}

// Scaler 是预拟合的特征缩放工件，核心链路将其视为不透明变换。
// Columns 返回拟合时的列顺序；Transform 输入输出形状一致。
type Scaler interface {
	Columns() []string
	Transform(rows [][]float64) ([][]float64, error)
}
