package taste

import (
	"math"
	"testing"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

func tableOf(tracks ...core.Track) *core.TrackTable {
	table := core.NewTrackTable(len(tracks))
	for _, tr := range tracks {
		table.Append(tr)
	}
	return table
}

func TestAggregate_MeanPerColumn(t *testing.T) {
	table := tableOf(
		core.Track{ID: "a", ReleaseYear: 2000, Popularity: 40, Features: core.AudioFeatures{Danceability: 0.2, Tempo: 100}},
		core.Track{ID: "b", ReleaseYear: 2010, Popularity: 60, Features: core.AudioFeatures{Danceability: 0.4, Tempo: 140}},
		core.Track{ID: "c", ReleaseYear: 2020, Popularity: 80, Features: core.AudioFeatures{Danceability: 0.9, Tempo: 90}},
	)

	vec, err := Aggregate(table, []string{"danceability", "tempo", "popularity", "release_year"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := []float64{0.5, 110, 60, 2010}
	for j, w := range want {
		if math.Abs(vec.Values[j]-w) > 1e-9 {
			t.Errorf("column %s mean = %v, want %v", vec.Columns[j], vec.Values[j], w)
		}
	}
}

func TestAggregate_SingleRowEqualsRow(t *testing.T) {
	tr := core.Track{ID: "only", ReleaseYear: 1987, Popularity: 55,
		Features: core.AudioFeatures{Energy: 0.77, Loudness: -6.2, DurationMS: 180000}}
	table := tableOf(tr)

	vec, err := Aggregate(table, core.ModelColumns)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	rowVec, err := tr.Vector(core.ModelColumns)
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	for j := range rowVec {
		if vec.Values[j] != rowVec[j] {
			t.Errorf("column %s = %v, want %v", core.ModelColumns[j], vec.Values[j], rowVec[j])
		}
	}
}

func TestAggregate_EmptyTable(t *testing.T) {
	_, err := Aggregate(core.NewTrackTable(0), core.ModelColumns)
	if !core.IsEmptyInput(err) {
		t.Fatalf("error = %v, want EMPTY_INPUT", err)
	}
}

func TestAggregate_NonFiniteFailsLoudly(t *testing.T) {
	tests := []struct {
		name string
		bad  float64
	}{
		{"nan", math.NaN()},
		{"positive inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tableOf(core.Track{ID: "x", ReleaseYear: 2020,
				Features: core.AudioFeatures{Tempo: tt.bad}})
			_, err := Aggregate(table, []string{"tempo"})
			if !core.IsInvalidInput(err) {
				t.Fatalf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestAggregate_UnknownColumn(t *testing.T) {
	table := tableOf(core.Track{ID: "x", ReleaseYear: 2020})
	_, err := Aggregate(table, []string{"danceability", "color"})
	if !core.IsSchemaMismatch(err) {
		t.Fatalf("error = %v, want SCHEMA_MISMATCH", err)
	}
}

func TestDescribe(t *testing.T) {
	table := tableOf(
		core.Track{ID: "a", ReleaseYear: 2000, Features: core.AudioFeatures{Valence: 0.1}},
		core.Track{ID: "b", ReleaseYear: 2010, Features: core.AudioFeatures{Valence: 0.9}},
	)

	summary, err := Describe(table, []string{"valence"})
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	s := summary[0]
	if s.Min != 0.1 || s.Max != 0.9 || math.Abs(s.Mean-0.5) > 1e-9 {
		t.Errorf("summary = %+v, want min 0.1 mean 0.5 max 0.9", s)
	}
}
