// Package songsuggest 是一个基于音频特征相似度的音乐推荐引擎。
//
// 设计要点：
// - 同步链路: 种子解析 → 归一化 → 口味聚合 → 余弦距离 Top-K（阶段间串行）
// - 领域接口在 core: 目录、特征源、存储、缩放器全部定义在领域层，由基础设施包实现
// - 缺数据即丢弃: 关键字段缺失的种子被质量闸静默跳过并计数，不做填充
package songsuggest

import (
	"github.com/chrisJoyceDS/SongSuggest/core"
	"github.com/chrisJoyceDS/SongSuggest/service"
)

// 轻量 facade：便于用户直接 import 根包使用核心抽象。
type Track = core.Track
type TrackTable = core.TrackTable
type TasteVector = core.TasteVector
type SeedCriteria = core.SeedCriteria
type TrackSeed = core.TrackSeed
type Recommendation = core.Recommendation
type Recommender = service.Recommender

const MaxSeeds = core.MaxSeeds
