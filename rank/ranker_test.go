package rank

import (
	"math"
	"testing"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

var testColumns = []string{"danceability", "energy", "tempo"}

func libraryTrack(id string, dance, energy, tempo float64) core.Track {
	return core.Track{
		ID:          id,
		TrackName:   "track " + id,
		Artist:      "artist " + id,
		ReleaseYear: 2015,
		Features:    core.AudioFeatures{Danceability: dance, Energy: energy, Tempo: tempo},
	}
}

func buildLibrary(tracks ...core.Track) *core.TrackTable {
	table := core.NewTrackTable(len(tracks))
	for _, tr := range tracks {
		table.Append(tr)
	}
	return table
}

func fitScaler(t *testing.T, library *core.TrackTable) *StandardScaler {
	t.Helper()
	matrix, err := library.Matrix(testColumns)
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	scaler, err := Fit(matrix, testColumns)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return scaler
}

func tasteOf(values ...float64) core.TasteVector {
	return core.TasteVector{Columns: testColumns, Values: values}
}

func TestRank_ReturnsMinKRowsSortedByDistance(t *testing.T) {
	library := buildLibrary(
		libraryTrack("a", 0.1, 0.1, 80),
		libraryTrack("b", 0.5, 0.5, 120),
		libraryTrack("c", 0.9, 0.9, 170),
		libraryTrack("d", 0.3, 0.6, 100),
	)
	ranker, err := NewRanker(fitScaler(t, library), library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}

	tests := []struct {
		name     string
		k        int
		wantRows int
	}{
		{"k smaller than library", 2, 2},
		{"k equals library", 4, 4},
		{"k larger than library", 99, 4},
		{"k zero defaults then clamps", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, display, err := ranker.Rank(tasteOf(0.5, 0.5, 120), tt.k)
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if len(full) != tt.wantRows || len(display) != tt.wantRows {
				t.Fatalf("rows = (%d, %d), want %d", len(full), len(display), tt.wantRows)
			}
			for i := range full {
				if display[i].TrackName != full[i].TrackName {
					t.Errorf("display[%d] out of sync with full rows", i)
				}
			}
		})
	}
}

func TestRank_RoundTripLibraryRowRanksFirst(t *testing.T) {
	target := libraryTrack("target", 0.8, 0.2, 95)
	library := buildLibrary(
		libraryTrack("a", 0.1, 0.9, 180),
		target,
		libraryTrack("b", 0.4, 0.5, 130),
	)
	scaler := fitScaler(t, library)
	ranker, err := NewRanker(scaler, library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}

	// taste vector equal to a library row's raw features
	taste := tasteOf(0.8, 0.2, 95)
	full, _, err := ranker.Rank(taste, 1)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if full[0].ID != "target" {
		t.Fatalf("top result = %s, want target", full[0].ID)
	}

	// and the achieved distance is ~0
	scaled, _ := scaler.Transform([][]float64{taste.Values})
	rowVec, _ := target.Vector(testColumns)
	scaledRow, _ := scaler.Transform([][]float64{rowVec})
	if d := cosineDistance(scaled[0], scaledRow[0]); math.Abs(d) > 1e-9 {
		t.Errorf("self distance = %v, want ~0", d)
	}
}

func TestRank_StableTieOrder(t *testing.T) {
	// two rows with identical feature vectors rank in library order
	library := buildLibrary(
		libraryTrack("far", 0.9, 0.9, 180),
		libraryTrack("twin1", 0.2, 0.3, 100),
		libraryTrack("twin2", 0.2, 0.3, 100),
	)
	ranker, err := NewRanker(fitScaler(t, library), library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}

	full, _, err := ranker.Rank(tasteOf(0.2, 0.3, 100), 3)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if full[0].ID != "twin1" || full[1].ID != "twin2" {
		t.Errorf("tie order = [%s %s], want [twin1 twin2]", full[0].ID, full[1].ID)
	}
}

func TestRank_NonDecreasingDistances(t *testing.T) {
	library := buildLibrary(
		libraryTrack("a", 0.9, 0.1, 60),
		libraryTrack("b", 0.2, 0.8, 140),
		libraryTrack("c", 0.5, 0.5, 110),
		libraryTrack("d", 0.7, 0.3, 90),
	)
	scaler := fitScaler(t, library)
	ranker, err := NewRanker(scaler, library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}

	taste := tasteOf(0.6, 0.4, 100)
	full, _, err := ranker.Rank(taste, 4)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	scaledTaste, _ := scaler.Transform([][]float64{taste.Values})
	prev := math.Inf(-1)
	for _, tr := range full {
		vec, _ := tr.Vector(testColumns)
		scaledRow, _ := scaler.Transform([][]float64{vec})
		d := cosineDistance(scaledTaste[0], scaledRow[0])
		if d < prev-1e-12 {
			t.Fatalf("distances not non-decreasing: %v after %v", d, prev)
		}
		prev = d
	}
}

func TestNewRanker_GatesRowsWithoutReleaseYear(t *testing.T) {
	noYear := libraryTrack("bad", 0.5, 0.5, 120)
	noYear.ReleaseYear = 0
	library := buildLibrary(noYear, libraryTrack("good", 0.5, 0.5, 120))

	ranker, err := NewRanker(fitScaler(t, library), library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}
	if ranker.LibrarySize() != 1 {
		t.Errorf("library size = %d, want 1", ranker.LibrarySize())
	}
}

func TestRank_SchemaMismatch(t *testing.T) {
	library := buildLibrary(libraryTrack("a", 0.5, 0.5, 120))
	ranker, err := NewRanker(fitScaler(t, library), library)
	if err != nil {
		t.Fatalf("NewRanker() error = %v", err)
	}

	tests := []struct {
		name  string
		taste core.TasteVector
	}{
		{
			name:  "wrong column count",
			taste: core.TasteVector{Columns: []string{"danceability"}, Values: []float64{0.5}},
		},
		{
			name: "wrong column order",
			taste: core.TasteVector{
				Columns: []string{"energy", "danceability", "tempo"},
				Values:  []float64{0.5, 0.5, 120},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ranker.Rank(tt.taste, 1)
			if !core.IsSchemaMismatch(err) {
				t.Fatalf("error = %v, want SCHEMA_MISMATCH", err)
			}
		})
	}
}

func TestStandardScaler_Transform(t *testing.T) {
	scaler := &StandardScaler{
		ColumnNames: []string{"a", "b", "c"},
		Mean:        []float64{10, 0, 5},
		Scale:       []float64{2, 1, 0}, // zero scale degrades to centering only
	}
	out, err := scaler.Transform([][]float64{{14, 3, 8}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := []float64{2, 3, 3}
	for j, w := range want {
		if out[0][j] != w {
			t.Errorf("out[%d] = %v, want %v", j, out[0][j], w)
		}
	}
}

func TestFitRoundTrip(t *testing.T) {
	matrix := [][]float64{{1, 100}, {3, 200}, {5, 300}}
	scaler, err := Fit(matrix, []string{"x", "y"})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	out, err := scaler.Transform(matrix)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// scaled columns have zero mean
	for j := 0; j < 2; j++ {
		var sum float64
		for i := range out {
			sum += out[i][j]
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("column %d mean = %v, want 0", j, sum/3)
		}
	}
}
