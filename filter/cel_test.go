package filter

import (
	"testing"

	"github.com/chrisJoyceDS/SongSuggest/core"
)

func track(id string, explicit float64, year int, genres ...string) core.Track {
	return core.Track{
		ID:          id,
		TrackName:   "track " + id,
		Explicit:    explicit,
		ReleaseYear: year,
		Genres:      genres,
	}
}

func tableOf(tracks ...core.Track) *core.TrackTable {
	table := core.NewTrackTable(len(tracks))
	for _, tr := range tracks {
		table.Append(tr)
	}
	return table
}

func TestCELFilter_ShouldFilter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		tr   core.Track
		want bool
	}{
		{"drops explicit", "track.explicit == 1.0", track("a", 1, 2000), true},
		{"keeps clean", "track.explicit == 1.0", track("a", 0, 2000), false},
		{"year cutoff", "track.release_year < 1990.0", track("a", 0, 1985), true},
		{"genre membership", `"jazz" in track.genres`, track("a", 0, 2000, "jazz", "soul"), true},
		{"genre absent", `"jazz" in track.genres`, track("a", 0, 2000, "metal"), false},
		{"compound", "track.explicit == 1.0 && track.release_year > 2010.0", track("a", 1, 2015), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewCELFilter(tt.expr)
			if err != nil {
				t.Fatalf("NewCELFilter(%q) error = %v", tt.expr, err)
			}
			got, err := f.ShouldFilter(&tt.tr)
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCELFilter_CompileError(t *testing.T) {
	if _, err := NewCELFilter("track.explicit =="); err == nil {
		t.Fatal("invalid expression should fail to compile")
	}
}

func TestApply(t *testing.T) {
	table := tableOf(
		track("keep1", 0, 2000),
		track("drop", 1, 2000),
		track("keep2", 0, 1995),
	)
	f, err := NewCELFilter("track.explicit == 1.0")
	if err != nil {
		t.Fatalf("NewCELFilter() error = %v", err)
	}

	out := Apply(table, f)
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if out.Contains("drop") {
		t.Error("explicit track should have been dropped")
	}
	// original table untouched
	if table.Len() != 3 {
		t.Errorf("input table mutated: rows = %d", table.Len())
	}
}

func TestCELFilter_NumericResult(t *testing.T) {
	// a numeric expression counts as truthy when non-zero
	f, err := NewCELFilter("track.explicit")
	if err != nil {
		t.Fatalf("NewCELFilter() error = %v", err)
	}
	tr := track("t1", 1, 2000)
	got, err := f.ShouldFilter(&tr)
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if !got {
		t.Error("ShouldFilter() = false, want true for non-zero numeric result")
	}
}

func TestApply_NoFilters(t *testing.T) {
	table := tableOf(track("a", 0, 2000))
	if out := Apply(table); out != table {
		t.Error("no filters should return the table unchanged")
	}
}
