package fuzzy

import "testing"

func TestScoreExactMatch(t *testing.T) {
	if got := Score("App", "App"); got != 1.0 {
		t.Errorf("Score(App, App) = %v, want 1.0", got)
	}
	if got := Score("app", "APP"); got != 1.0 {
		t.Errorf("exact match should be case-insensitive, got %v", got)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	if got := Score("", "x"); got != 0 {
		t.Errorf("Score(\"\", x) = %v, want 0", got)
	}
	if got := Score("x", ""); got != 0 {
		t.Errorf("Score(x, \"\") = %v, want 0", got)
	}
}

func TestScoreNameWithoutExtension(t *testing.T) {
	if got := Score("App", "src/App.tsx"); got != 0.95 {
		t.Errorf("Score(App, src/App.tsx) = %v, want 0.95", got)
	}
}

func TestScorePrefersFilenameStart(t *testing.T) {
	exact := Score("App", "App.tsx")
	inner := Score("App", "myApp.tsx")
	if exact <= inner {
		t.Errorf("Score(App, App.tsx)=%v should beat Score(App, myApp.tsx)=%v", exact, inner)
	}
}

func TestScorePathOnlyMatch(t *testing.T) {
	// Query appears in the path but not the filename.
	got := Score("src", "/repo/src/main.go")
	if got < 0.3 || got >= 0.4 {
		t.Errorf("path-only match = %v, want in [0.3, 0.4)", got)
	}
}

func TestScoreEditDistanceFallback(t *testing.T) {
	// "mian" vs "main.go": no containment either way, similarity via distance.
	got := Score("mian", "main.go")
	if got <= 0 || got >= 0.8 {
		t.Errorf("edit distance fallback = %v, want in (0, 0.8)", got)
	}
}

func TestMatchThresholdIsStrict(t *testing.T) {
	if Match("a", "abcdefghij", 0.9) {
		t.Error("short prefix of long name should not clear a 0.9 threshold")
	}
	if !Match("test", "test", 0.99) {
		t.Error("exact match should clear a 0.99 threshold")
	}
	// Score exactly at threshold must not match.
	score := Score("App", "src/App.tsx")
	if Match("App", "src/App.tsx", score) {
		t.Error("score equal to threshold must not count as a match")
	}
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b); got != c.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
