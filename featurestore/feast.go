// Package featurestore 对接 Feast Feature Store，提供音频特征的在线读取。
//
// 设计原则（DDD）：
//   - 领域层：core.AudioFeatureSource 接口保持不变
//   - 基础设施层：FeastSource 实现该接口
//   - 高内聚低耦合：通过接口抽象，可以替换为目录 API 直连实现
package featurestore

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// DefaultFeatureView 是音频特征在 Feast 里注册的特征视图名。
const DefaultFeatureView = "track_audio_features"

// FeastSource 是基于官方 Feast Go SDK 的音频特征源。
//
// 使用场景：
//   - 音频特征已离线物化到在线存储时，替代目录 API 直连获取
//   - 实时性优秀（gRPC 低延迟、连接复用）
type FeastSource struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// FeatureView 特征视图名，默认 DefaultFeatureView
	FeatureView string

	// EntityKey 实体键名，默认 "track_id"
	EntityKey string
}

// NewFeastSource 创建一个 Feast 音频特征源。
//
// 参数：
//   - host: Feast Feature Server 主机地址，例如 "localhost"
//   - port: gRPC 端口，默认 6565
//   - project: 项目名称
func NewFeastSource(host string, port int, project string) (*FeastSource, error) {
	if port == 0 {
		port = 6565 // 默认 gRPC 端口
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}
	return &FeastSource{
		client:      client,
		Project:     project,
		FeatureView: DefaultFeatureView,
		EntityKey:   "track_id",
	}, nil
}

// AudioFeatures 批量获取曲目的音频特征（实现 core.AudioFeatureSource 接口）。
// 返回切片与 ids 按下标对齐；某个 id 在特征库缺失时对应位置为 nil。
func (s *FeastSource) AudioFeatures(ctx context.Context, ids []string) ([]*core.AudioFeatures, error) {
	if len(ids) == 0 {
		return []*core.AudioFeatures{}, nil
	}

	refs := make([]string, len(core.AudioFeatureColumns))
	for i, col := range core.AudioFeatureColumns {
		refs[i] = s.FeatureView + ":" + col
	}
	entities := make([]feastsdk.Row, len(ids))
	for i, id := range ids {
		entities[i] = feastsdk.Row{s.EntityKey: feastsdk.StrVal(id)}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: entities,
		Project:  s.Project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUpstream,
			fmt.Sprintf("feast get online features: %v", err))
	}

	rows := resp.Rows()
	if len(rows) != len(ids) {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUpstream,
			fmt.Sprintf("feast response row count mismatch: expected %d, got %d", len(ids), len(rows)))
	}

	out := make([]*core.AudioFeatures, len(ids))
	for i := range rows {
		out[i] = extractFeatures(rows[i], s.FeatureView)
	}
	return out, nil
}

func (s *FeastSource) Close() error {
	s.client = nil
	return nil
}

// extractFeatures 把一行 Feast 响应转成 AudioFeatures。
// 任何一列缺失或非数值即视为该曲目无特征，返回 nil。
func extractFeatures(row feastsdk.Row, view string) *core.AudioFeatures {
	values := make(map[string]float64, len(core.AudioFeatureColumns))
	for _, col := range core.AudioFeatureColumns {
		val, ok := row[view+":"+col]
		if !ok {
			// 部分版本的响应键不带视图前缀
			val, ok = row[col]
		}
		if !ok {
			return nil
		}
		f, ok := floatValue(val)
		if !ok {
			return nil
		}
		values[col] = f
	}
	return &core.AudioFeatures{
		Danceability:     values["danceability"],
		Energy:           values["energy"],
		Key:              values["key"],
		Loudness:         values["loudness"],
		Mode:             values["mode"],
		Speechiness:      values["speechiness"],
		Acousticness:     values["acousticness"],
		Instrumentalness: values["instrumentalness"],
		Liveness:         values["liveness"],
		Valence:          values["valence"],
		Tempo:            values["tempo"],
		DurationMS:       values["duration_ms"],
		TimeSignature:    values["time_signature"],
	}
}

// floatValue 从 SDK 的 protobuf Value 提取数值
func floatValue(v *feasttypes.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch x := v.GetVal().(type) {
	case *feasttypes.Value_DoubleVal:
		return x.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(x.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(x.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(x.Int32Val), true
	default:
		return 0, false
	}
}

// 确保 FeastSource 实现了 core.AudioFeatureSource 接口
var _ core.AudioFeatureSource = (*FeastSource)(nil)
