package featurestore

import (
	"context"
	"testing"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

// 需要连接真实的 Feast 服务器才能运行端到端路径，这里只验证可本地计算的部分。
func TestFeastSourceOnline(t *testing.T) {
	t.Skip("requires a running Feast feature server")

	src, err := NewFeastSource("localhost", 6565, "songsuggest")
	if err != nil {
		t.Fatalf("NewFeastSource() error = %v", err)
	}
	defer src.Close()

	feats, err := src.AudioFeatures(context.Background(), []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("AudioFeatures() error = %v", err)
	}
	if len(feats) != 2 {
		t.Fatalf("AudioFeatures() returned %d rows, want 2", len(feats))
	}
}

func TestExtractFeatures(t *testing.T) {
	row := feastsdk.Row{}
	for _, col := range core.AudioFeatureColumns {
		row[DefaultFeatureView+":"+col] = feastsdk.DoubleVal(0.5)
	}
	row[DefaultFeatureView+":tempo"] = feastsdk.DoubleVal(120)
	row[DefaultFeatureView+":key"] = feastsdk.Int64Val(7)

	got := extractFeatures(row, DefaultFeatureView)
	if got == nil {
		t.Fatal("extractFeatures() = nil, want features")
	}
	if got.Tempo != 120 {
		t.Errorf("Tempo = %v, want 120", got.Tempo)
	}
	if got.Key != 7 {
		t.Errorf("Key = %v, want 7", got.Key)
	}
	if got.Danceability != 0.5 {
		t.Errorf("Danceability = %v, want 0.5", got.Danceability)
	}
}

func TestExtractFeaturesMissingColumn(t *testing.T) {
	row := feastsdk.Row{
		DefaultFeatureView + ":danceability": feastsdk.DoubleVal(0.5),
	}
	if got := extractFeatures(row, DefaultFeatureView); got != nil {
		t.Fatalf("extractFeatures() = %+v, want nil for incomplete row", got)
	}
}

func TestExtractFeaturesBareColumnNames(t *testing.T) {
	row := feastsdk.Row{}
	for _, col := range core.AudioFeatureColumns {
		row[col] = feastsdk.DoubleVal(0.25)
	}
	got := extractFeatures(row, DefaultFeatureView)
	if got == nil {
		t.Fatal("extractFeatures() = nil, want features from unprefixed keys")
	}
	if got.Valence != 0.25 {
		t.Errorf("Valence = %v, want 0.25", got.Valence)
	}
}

func TestFloatValue(t *testing.T) {
	if _, ok := floatValue(feastsdk.StrVal("nope")); ok {
		t.Error("floatValue(string) ok = true, want false")
	}
	if v, ok := floatValue(feastsdk.FloatVal(1.5)); !ok || v != 1.5 {
		t.Errorf("floatValue(float32) = %v/%v", v, ok)
	}
	if _, ok := floatValue(nil); ok {
		t.Error("floatValue(nil) ok = true, want false")
	}
}
