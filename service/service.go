// Package service 把检索、归一化、口味聚合与排序装配成完整的推荐链路。
//
// 链路各阶段同步执行，一个阶段完整结束后才进入下一阶段；超时与取消
// 通过 context 贯穿全链路。
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chrisJoyceDS/SongSuggest/core"
	"github.com/chrisJoyceDS/SongSuggest/normalize"
	"github.com/chrisJoyceDS/SongSuggest/rank"
	"github.com/chrisJoyceDS/SongSuggest/recall"
	"github.com/chrisJoyceDS/SongSuggest/taste"
)

// Recommender 是推荐链路的编排器。
// 候选过滤发生在排序器构造之前（见 Build），请求期链路不再过滤。
type Recommender struct {
	catalog    core.CatalogClient
	normalizer *normalize.Normalizer
	ranker     *rank.Ranker
	topK       int
	logger     *zap.Logger
}

type RecommenderOption func(*Recommender)

// WithTopK 设置推荐条数，默认 rank.DefaultTopK
func WithTopK(k int) RecommenderOption {
	return func(r *Recommender) {
		if k > 0 {
			r.topK = k
		}
	}
}

func WithLogger(logger *zap.Logger) RecommenderOption {
	return func(r *Recommender) { r.logger = logger }
}

func NewRecommender(catalog core.CatalogClient, normalizer *normalize.Normalizer, ranker *rank.Ranker, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		catalog:    catalog,
		normalizer: normalizer,
		ranker:     ranker,
		topK:       rank.DefaultTopK,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend 执行一次端到端推荐：
// 校验种子 → 解析种子为曲目 → 归一化 → 口味聚合 → 排序 Top-K。
//
// 种子一条都解析不出（或全部被质量闸丢弃）时返回 EMPTY_INPUT，
// 不返回部分结果。
func (r *Recommender) Recommend(ctx context.Context, criteria core.SeedCriteria) (*core.Recommendation, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	source, err := recall.ForCriteria(r.catalog, criteria)
	if err != nil {
		return nil, err
	}

	raw, err := source.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	// 多流派/多艺人命中可能重叠，先做一次 first-wins 去重
	raw = recall.Merge(raw)
	r.logger.Debug("seeds resolved",
		zap.String("source", source.Name()),
		zap.Int("raw_tracks", len(raw)))

	seeds, report, err := r.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	if seeds.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeEmptyInput,
			"no seed tracks survived resolution")
	}
	r.logger.Info("seed table built",
		zap.Int("rows", seeds.Len()),
		zap.Int("skipped", report.Total()))

	tasteVec, err := taste.Aggregate(seeds, core.ModelColumns)
	if err != nil {
		return nil, err
	}

	full, display, err := r.ranker.Rank(tasteVec, r.topK)
	if err != nil {
		return nil, err
	}
	r.logger.Info("recommendations ranked", zap.Int("count", len(full)))

	return &core.Recommendation{
		Seeds:   seeds,
		Full:    full,
		Display: display,
		Skipped: map[string]int(report),
	}, nil
}
