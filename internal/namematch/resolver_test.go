package namematch

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A.J. Brown", "aj brown"},
		{"Travis Etienne Jr.", "travis etienne"},
		{"D'Andre Swift", "dandre swift"},
		{"Odell Beckham Jr", "odell beckham"},
		{"Marvin Harrison Sr.", "marvin harrison"},
		{"Patrick  Mahomes ", "patrick mahomes"},
		{"Jeff Wilson III", "jeff wilson"},
		{"Ja'Marr Chase", "jamarr chase"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func testResolver() *Resolver {
	r := NewResolver(0)
	r.BuildIndex(map[string]string{
		"aj brown":       "A.J. Brown",
		"travis etienne": "Travis Etienne Jr.",
		"justin jefferson": "Justin Jefferson",
		"dandre swift":   "D'Andre Swift",
	})
	return r
}

func TestResolveExact(t *testing.T) {
	r := testResolver()
	tests := []struct {
		in   string
		want string
	}{
		{"A.J. Brown", "aj brown"},
		{"AJ Brown", "aj brown"},
		{"Travis Etienne", "travis etienne"},
		{"Travis Etienne Jr.", "travis etienne"},
		{"D'Andre Swift", "dandre swift"},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.in)
		if !ok || got != tt.want {
			t.Fatalf("Resolve(%q) = (%q, %v), want (%q, true)", tt.in, got, ok, tt.want)
		}
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := testResolver()
	// Minor typo should still land above the threshold.
	got, ok := r.Resolve("Justin Jeferson")
	if !ok || got != "justin jefferson" {
		t.Fatalf("Resolve typo = (%q, %v), want (justin jefferson, true)", got, ok)
	}
	// Token order must not matter.
	got, ok = r.Resolve("Jefferson Justin")
	if !ok || got != "justin jefferson" {
		t.Fatalf("Resolve reversed = (%q, %v), want (justin jefferson, true)", got, ok)
	}
}

func TestResolveMiss(t *testing.T) {
	r := testResolver()
	if got, ok := r.Resolve("Zebulon Quixote"); ok {
		t.Fatalf("expected miss, got %q", got)
	}
	if _, ok := r.Resolve(""); ok {
		t.Fatalf("empty input must not resolve")
	}
	// The miss is cached; resolving again must stay a miss.
	if _, ok := r.Resolve("Zebulon Quixote"); ok {
		t.Fatalf("cached miss must stay a miss")
	}
}

func TestResolveCachesHits(t *testing.T) {
	r := testResolver()
	if _, ok := r.Resolve("AJ Brown"); !ok {
		t.Fatalf("first lookup failed")
	}
	r.mu.RLock()
	_, cached := r.cache["AJ Brown"]
	r.mu.RUnlock()
	if !cached {
		t.Fatalf("hit was not cached")
	}
}

func TestTokenSortScore(t *testing.T) {
	if got := tokenSortScore("aj brown", "brown aj"); got != 100 {
		t.Fatalf("reordered tokens should score 100, got %d", got)
	}
	if got := tokenSortScore("", ""); got != 0 {
		t.Fatalf("empty inputs should score 0, got %d", got)
	}
	if got := tokenSortScore("aj brown", "zzz qqq"); got >= DefaultThreshold {
		t.Fatalf("unrelated names should score below threshold, got %d", got)
	}
}
