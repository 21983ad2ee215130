package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	catalogspotify "github.com/chrisJoyceDS/SongSuggest/catalog/spotify"
	"github.com/chrisJoyceDS/SongSuggest/config"
	"github.com/chrisJoyceDS/SongSuggest/core"
	"github.com/chrisJoyceDS/SongSuggest/featurestore"
	"github.com/chrisJoyceDS/SongSuggest/filter"
	"github.com/chrisJoyceDS/SongSuggest/library"
	"github.com/chrisJoyceDS/SongSuggest/normalize"
	"github.com/chrisJoyceDS/SongSuggest/rank"
	"github.com/chrisJoyceDS/SongSuggest/store"
)

// Build 根据配置装配一个完整的 Recommender。
//
// 装配顺序：存储 → 目录客户端 → 特征源 → 归一化器 → 候选库与排序器。
// 返回的 cleanup 关闭所有持有连接的组件，调用方负责在进程退出前调用。
func Build(ctx context.Context, cfg *config.Config, creds config.Credentials, logger *zap.Logger) (*Recommender, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var cache core.Store
	switch cfg.Store.Kind {
	case "memory":
		cache = store.NewMemoryStore()
	case "redis":
		rs, err := store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		cache = rs
	case "none", "":
		// 不缓存目录响应
	default:
		return nil, nil, fmt.Errorf("unknown store kind: %s", cfg.Store.Kind)
	}

	catalogOpts := []catalogspotify.Option{
		catalogspotify.WithMarket(cfg.Catalog.Market),
		catalogspotify.WithPageLimit(cfg.Catalog.PageLimit),
		catalogspotify.WithRetryPolicy(cfg.Catalog.MaxRetries, cfg.Catalog.BackoffMs),
		catalogspotify.WithLogger(logger),
	}
	if cache != nil {
		catalogOpts = append(catalogOpts, catalogspotify.WithStore(cache, cfg.Catalog.CacheTTLSec))
	}
	catalog, err := catalogspotify.NewClient(ctx, creds.ClientID, creds.ClientSecret, catalogOpts...)
	if err != nil {
		closeStore(cache, logger)
		return nil, nil, err
	}

	var features core.AudioFeatureSource = catalog
	var feastSource *featurestore.FeastSource
	if cfg.Feast.Enabled {
		feastSource, err = featurestore.NewFeastSource(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project)
		if err != nil {
			closeStore(cache, logger)
			return nil, nil, fmt.Errorf("connect feast: %w", err)
		}
		features = feastSource
	}

	normalizer := normalize.New(features, catalog,
		normalize.WithBatchSize(cfg.Normalize.BatchSize),
		normalize.WithLogger(logger))

	lib, err := library.NewLoader(cfg.Rank.LibraryPath).Load()
	if err != nil {
		closeStore(cache, logger)
		return nil, nil, err
	}
	// 候选过滤在此一次性作用于候选库，被剔除的行不会进入排序
	if cfg.Catalog.FilterExpr != "" {
		f, err := filter.NewCELFilter(cfg.Catalog.FilterExpr)
		if err != nil {
			closeStore(cache, logger)
			return nil, nil, fmt.Errorf("compile filter: %w", err)
		}
		before := lib.Len()
		lib = filter.Apply(lib, f)
		logger.Info("candidate library filtered",
			zap.Int("before", before), zap.Int("after", lib.Len()))
	}
	scaler, err := rank.LoadScaler(cfg.Rank.ScalerPath)
	if err != nil {
		closeStore(cache, logger)
		return nil, nil, err
	}
	ranker, err := rank.NewRanker(scaler, lib)
	if err != nil {
		closeStore(cache, logger)
		return nil, nil, err
	}

	opts := []RecommenderOption{
		WithTopK(cfg.Rank.TopK),
		WithLogger(logger),
	}

	cleanup := func() {
		if feastSource != nil {
			_ = feastSource.Close()
		}
		closeStore(cache, logger)
	}
	return NewRecommender(catalog, normalizer, ranker, opts...), cleanup, nil
}

func closeStore(s core.Store, logger *zap.Logger) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("close store", zap.Error(err))
	}
}
