package core

// MaxSeeds 是每种种子类型的数量上限（来自前端协作方的约束）。
const MaxSeeds = 5

// CriteriaKind 标记种子类型，编排器按此分派解析策略。
type CriteriaKind string

const (
	CriteriaGenres  CriteriaKind = "genres"  // 按流派搜索曲目
	CriteriaArtists CriteriaKind = "artists" // 按艺人热门曲目
	CriteriaTracks  CriteriaKind = "tracks"  // 按精确曲目检索
	CriteriaLibrary CriteriaKind = "library" // 用户收藏曲目（需用户级授权）
)

// TrackSeed 是一条精确曲目种子：(名称, 艺人, 年份) 三元组。
type TrackSeed struct {
	Name   string
	Artist string
	Year   int
}

// SeedCriteria 是用户提供的种子输入，三种变体互斥，取第一个非空的。
// 核心链路不直接消费原始种子，只消费解析后的曲目表。
type SeedCriteria struct {
	Genres  []string
	Artists []string
	Tracks  []TrackSeed

	// Library 置真时解析用户收藏曲目（补充自原系统的 saved-tracks 路径）
	Library bool
}

// Kind 返回生效的种子变体。
func (c SeedCriteria) Kind() CriteriaKind {
	switch {
	case len(c.Genres) > 0:
		return CriteriaGenres
	case len(c.Artists) > 0:
		return CriteriaArtists
	case len(c.Tracks) > 0:
		return CriteriaTracks
	case c.Library:
		return CriteriaLibrary
	default:
		return ""
	}
}

// Validate 校验种子数量与内容。零种子或超出 MaxSeeds 均报 INVALID_INPUT。
func (c SeedCriteria) Validate() error {
	kind := c.Kind()
	if kind == "" {
		return NewDomainError(ModuleService, ErrorCodeInvalidInput,
			"seed criteria: no seeds supplied")
	}
	var n int
	switch kind {
	case CriteriaGenres:
		n = len(c.Genres)
		for _, g := range c.Genres {
			if g == "" {
				return NewDomainError(ModuleService, ErrorCodeInvalidInput,
					"seed criteria: empty genre")
			}
		}
	case CriteriaArtists:
		n = len(c.Artists)
		for _, a := range c.Artists {
			if a == "" {
				return NewDomainError(ModuleService, ErrorCodeInvalidInput,
					"seed criteria: empty artist name")
			}
		}
	case CriteriaTracks:
		n = len(c.Tracks)
		for _, t := range c.Tracks {
			if t.Name == "" || t.Artist == "" {
				return NewDomainError(ModuleService, ErrorCodeInvalidInput,
					"seed criteria: track seed requires name and artist")
			}
		}
	case CriteriaLibrary:
		n = 1
	}
	if n > MaxSeeds {
		return NewDomainError(ModuleService, ErrorCodeInvalidInput,
			"seed criteria: at most 5 seeds per kind")
	}
	return nil
}
