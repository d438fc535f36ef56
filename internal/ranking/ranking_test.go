package ranking

import (
	"math"
	"testing"

	"github.com/blackwell-systems/applaunch/internal/entry"
)

type boostMap map[string]float64

func (m boostMap) CalculateBoost(name string) float64 { return m[name] }

func apps(names ...string) []entry.Entry {
	entries := make([]entry.Entry, len(names))
	for i, n := range names {
		entries[i] = entry.Entry{Name: n, Exec: n, Icon: "icon", OpenType: entry.Graphical}
	}
	return entries
}

func names(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Entry.Name
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRank_EmptyQuerySortsByBoost(t *testing.T) {
	candidates := apps("Alpha", "Beta", "Gamma", "Delta", "Epsilon")
	boosts := boostMap{"Gamma": 0.9, "Delta": 0.4, "Beta": 0.4}

	got := names(Rank(candidates, "", boosts))
	want := []string{"Gamma", "Beta", "Delta", "Alpha", "Epsilon"}
	if !equalNames(got, want) {
		t.Errorf("Rank(empty) = %v, want %v", got, want)
	}
}

func TestRank_EmptyQueryIsPermutation(t *testing.T) {
	candidates := apps("a", "b", "c", "d")
	got := Rank(candidates, "   ", nil)
	if len(got) != len(candidates) {
		t.Fatalf("len(Rank) = %d, want %d", len(got), len(candidates))
	}
	if !equalNames(names(got), []string{"a", "b", "c", "d"}) {
		t.Errorf("Rank(blank, nil booster) = %v, want input order", names(got))
	}
	for _, s := range got {
		if s.Matched {
			t.Errorf("%s marked as fuzzy matched for empty query", s.Entry.Name)
		}
	}
}

func TestRank_ExcludesNonMatches(t *testing.T) {
	candidates := apps("Firefox", "Files", "GIMP")

	got := Rank(candidates, "fx", nil)
	if !equalNames(names(got), []string{"Firefox"}) {
		t.Fatalf("Rank(fx) = %v, want [Firefox]", names(got))
	}
	if !got[0].Matched || len(got[0].MatchedIndexes) != 2 {
		t.Errorf("Rank(fx)[0] = %+v, want two matched indexes", got[0])
	}

	got = Rank(candidates, "fi", nil)
	for _, s := range got {
		if s.Entry.Name == "GIMP" {
			t.Errorf("Rank(fi) returned GIMP")
		}
	}
	if len(got) != 2 {
		t.Errorf("Rank(fi) = %v, want Firefox and Files", names(got))
	}
}

func TestRank_BoostCannotCreateMatch(t *testing.T) {
	candidates := apps("Firefox", "GIMP")
	got := Rank(candidates, "fire", boostMap{"GIMP": 1.0})
	if !equalNames(names(got), []string{"Firefox"}) {
		t.Errorf("Rank(fire) = %v, want [Firefox]", names(got))
	}
}

func TestRank_CaseInsensitive(t *testing.T) {
	got := Rank(apps("Firefox"), "FIRE", nil)
	if len(got) != 1 {
		t.Errorf("Rank(FIRE) = %v, want [Firefox]", names(got))
	}
}

func TestRank_BoostBreaksEqualFuzzyScores(t *testing.T) {
	candidates := apps("Terminal A", "Terminal B")

	plain := Rank(candidates, "term", nil)
	if !equalNames(names(plain), []string{"Terminal A", "Terminal B"}) {
		t.Fatalf("Rank without boost = %v, want input order", names(plain))
	}
	if plain[0].Score != plain[1].Score {
		t.Fatalf("fuzzy scores differ: %d vs %d", plain[0].Score, plain[1].Score)
	}

	boosted := Rank(candidates, "term", boostMap{"Terminal B": 0.8})
	if !equalNames(names(boosted), []string{"Terminal B", "Terminal A"}) {
		t.Errorf("Rank with boost = %v, want Terminal B first", names(boosted))
	}
	if boosted[0].Boost != 0.8 {
		t.Errorf("Boost = %v, want 0.8", boosted[0].Boost)
	}
}

func TestRank_SortedDescending(t *testing.T) {
	candidates := apps("Text Editor", "Terminal", "Tetris", "Settings", "Steam")
	got := Rank(candidates, "te", boostMap{"Settings": 0.3, "Steam": 1.0})
	for i := 1; i < len(got); i++ {
		if got[i].Combined > got[i-1].Combined {
			t.Errorf("result %d (%v) scores above result %d (%v)", i, got[i].Combined, i-1, got[i-1].Combined)
		}
	}
}

func TestRank_NaNBoostDoesNotPanic(t *testing.T) {
	candidates := apps("Alpha", "Beta", "Gamma")
	got := Rank(candidates, "", boostMap{"Beta": math.NaN()})
	if len(got) != 3 {
		t.Errorf("len(Rank) = %d, want 3", len(got))
	}
	got = Rank(candidates, "a", boostMap{"Beta": math.NaN()})
	if len(got) != 3 {
		t.Errorf("len(Rank(a)) = %d, want 3", len(got))
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		score int
		boost float64
		want  float64
	}{
		{100, 0, 100},
		{100, 1, 150},
		{40, 0.5, 50},
		{0, 1, 0},
		{-10, 0, -10},
		{-10, 1, -5},
	}

	for _, tt := range tests {
		if got := Blend(tt.score, tt.boost); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Blend(%d, %v) = %v, want %v", tt.score, tt.boost, got, tt.want)
		}
	}
}

func TestEntriesAndTop(t *testing.T) {
	scored := Rank(apps("a", "b", "c"), "", nil)

	if got := Entries(scored); len(got) != 3 || got[2].Name != "c" {
		t.Errorf("Entries() = %+v", got)
	}
	if got := Top(scored, 2); len(got) != 2 {
		t.Errorf("len(Top(2)) = %d, want 2", len(got))
	}
	if got := Top(scored, 0); len(got) != 3 {
		t.Errorf("len(Top(0)) = %d, want 3", len(got))
	}
}
