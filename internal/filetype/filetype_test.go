package filetype

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchesFilterAll(t *testing.T) {
	if !MatchesFilter("/repo/blob.bin", false, FilterAll) {
		t.Error("FilterAll must match everything")
	}
}

func TestMatchesFilterDirectoriesAlwaysPass(t *testing.T) {
	for _, ft := range []FilterType{FilterCode, FilterDocs, FilterConfig, FilterData, FilterImages} {
		if !MatchesFilter("/repo/anything", true, ft) {
			t.Errorf("directories must pass filter %v", ft)
		}
	}
}

func TestMatchesFilterByExtension(t *testing.T) {
	cases := []struct {
		path   string
		filter FilterType
		want   bool
	}{
		{"/repo/main.go", FilterCode, true},
		{"/repo/App.TSX", FilterCode, true},
		{"/repo/readme.md", FilterDocs, true},
		{"/repo/config.yaml", FilterConfig, true},
		{"/repo/data.csv", FilterData, true},
		{"/repo/logo.png", FilterImages, true},
		{"/repo/main.go", FilterDocs, false},
		{"/repo/noext", FilterCode, false},
	}
	for _, c := range cases {
		if got := MatchesFilter(c.path, false, c.filter); got != c.want {
			t.Errorf("MatchesFilter(%q, file, %v) = %v, want %v", c.path, c.filter, got, c.want)
		}
	}
}

func TestFilterCycle(t *testing.T) {
	seen := map[FilterType]bool{}
	ft := FilterAll
	for i := 0; i < len(filterOrder); i++ {
		if seen[ft] {
			t.Fatalf("cycle revisited %v early", ft)
		}
		seen[ft] = true
		ft = ft.Next()
	}
	if ft != FilterAll {
		t.Errorf("cycle should wrap back to FilterAll, got %v", ft)
	}
}

func TestIsBinary(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(textPath, []byte("hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if IsBinary(textPath) {
		t.Error("plain text flagged as binary")
	}

	binPath := filepath.Join(dir, "blob")
	if err := os.WriteFile(binPath, []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsBinary(binPath) {
		t.Error("NUL-bearing file not flagged as binary")
	}
}
