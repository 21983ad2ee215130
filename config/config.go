// Package config 加载推荐服务的 YAML 配置与目录凭据。
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 是服务配置结构（YAML）。
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Rank      RankConfig      `yaml:"rank"`
	Store     StoreConfig     `yaml:"store"`
	Feast     FeastConfig     `yaml:"feast"`
}

type CatalogConfig struct {
	Market      string `yaml:"market"`       // 检索市场，默认 US
	PageLimit   int    `yaml:"page_limit"`   // 搜索单页大小
	MaxRetries  int    `yaml:"max_retries"`  // 瞬时错误重试次数
	BackoffMs   int    `yaml:"backoff_ms"`   // 重试退避基数（毫秒）
	CacheTTLSec int    `yaml:"cache_ttl"`    // 目录响应缓存 TTL（秒），0 = 不过期
	FilterExpr  string `yaml:"filter_expr"`  // 候选过滤的 CEL 表达式，空 = 不过滤
}

type NormalizeConfig struct {
	BatchSize int `yaml:"batch_size"` // 特征批量查询大小
}

type RankConfig struct {
	TopK        int    `yaml:"top_k"`        // 推荐条数
	LibraryPath string `yaml:"library_path"` // 候选库 CSV 路径
	ScalerPath  string `yaml:"scaler_path"`  // 缩放工件 JSON 路径
}

type StoreConfig struct {
	Kind      string `yaml:"kind"`       // memory / redis / none
	RedisAddr string `yaml:"redis_addr"` // kind=redis 时生效
	RedisDB   int    `yaml:"redis_db"`
}

type FeastConfig struct {
	Enabled bool   `yaml:"enabled"` // 启用时音频特征从 Feast 读取，否则走目录 API
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// Load 从 YAML 文件加载配置并补默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回全默认值配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Catalog.Market == "" {
		c.Catalog.Market = "US"
	}
	if c.Catalog.PageLimit <= 0 {
		c.Catalog.PageLimit = 50
	}
	if c.Catalog.MaxRetries <= 0 {
		c.Catalog.MaxRetries = 3
	}
	if c.Catalog.BackoffMs <= 0 {
		c.Catalog.BackoffMs = 500
	}
	if c.Normalize.BatchSize <= 0 {
		c.Normalize.BatchSize = 100
	}
	if c.Rank.TopK <= 0 {
		c.Rank.TopK = 10
	}
	if c.Rank.LibraryPath == "" {
		c.Rank.LibraryPath = "data/library.csv"
	}
	if c.Rank.ScalerPath == "" {
		c.Rank.ScalerPath = "data/scaler.json"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
	if c.Feast.Port <= 0 {
		c.Feast.Port = 6565
	}
}

// Credentials 是目录 API 的访问凭据，从环境变量读取。
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials 读取目录凭据。
// 先尝试加载 .env 文件（不存在则忽略），再读环境变量。
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	creds := Credentials{
		ClientID:     os.Getenv("SPOTIFY_ID"),
		ClientSecret: os.Getenv("SPOTIFY_SECRET"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("SPOTIFY_ID and SPOTIFY_SECRET must be set")
	}
	return creds, nil
}
