package spotify

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/chrisJoyceDS/SongSuggest/core"
	"github.com/chrisJoyceDS/SongSuggest/store"
)

// fully cached ids must be served without touching the catalog API
func TestAudioFeaturesServedFromCache(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	want := &core.AudioFeatures{Danceability: 0.8, Tempo: 120, Key: 5}
	raw, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	if err := ms.Set(ctx, featureKeyPrefix+"t1", raw); err != nil {
		t.Fatal(err)
	}

	// api left nil: any cache miss would panic, proving no upstream call happened
	c := &Client{cache: ms, logger: zap.NewNop()}
	got, err := c.AudioFeatures(ctx, []string{"t1"})
	if err != nil {
		t.Fatalf("AudioFeatures() error = %v", err)
	}
	if len(got) != 1 || got[0] == nil {
		t.Fatalf("AudioFeatures() = %v", got)
	}
	if got[0].Danceability != 0.8 || got[0].Tempo != 120 || got[0].Key != 5 {
		t.Errorf("AudioFeatures()[0] = %+v, want %+v", got[0], want)
	}
}

func TestAudioFeaturesEmptyInput(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	got, err := c.AudioFeatures(context.Background(), nil)
	if err != nil {
		t.Fatalf("AudioFeatures(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AudioFeatures(nil) = %v, want empty", got)
	}
}

func TestArtistGenresServedFromCache(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	raw, _ := json.Marshal([]string{"cool jazz", "bebop"})
	if err := ms.Set(ctx, genresKeyPrefix+"spotify:artist:a1", raw); err != nil {
		t.Fatal(err)
	}

	c := &Client{cache: ms, logger: zap.NewNop()}
	got, err := c.ArtistGenres(ctx, "spotify:artist:a1")
	if err != nil {
		t.Fatalf("ArtistGenres() error = %v", err)
	}
	if len(got) != 2 || got[0] != "cool jazz" {
		t.Errorf("ArtistGenres() = %v", got)
	}
}
