package tokencount

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// wordCounter counts whitespace-separated words; deterministic and fast.
type wordCounter struct{}

func (wordCounter) Name() string { return "words" }

func (wordCounter) CountString(input string) (int, error) {
	if input == "" {
		return 0, nil
	}
	return len(strings.Fields(input)), nil
}

func TestCountCachesResult(t *testing.T) {
	var loads atomic.Int32
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		loads.Add(1)
		return "one two three", nil
	})

	for i := 0; i < 3; i++ {
		count, err := cache.Count(context.Background(), "/repo/a.go")
		if err != nil {
			t.Fatal(err)
		}
		if count != 3 {
			t.Fatalf("count = %d, want 3", count)
		}
	}
	if loads.Load() != 1 {
		t.Errorf("loader ran %d times, want 1", loads.Load())
	}
}

func TestConcurrentCountsShareOneFlight(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		loads.Add(1)
		<-release
		return "a b", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Count(context.Background(), "/same/path"); err != nil {
				t.Error(err)
			}
		}()
	}
	close(release)
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("loader ran %d times for one path, want 1", loads.Load())
	}
}

func TestCountErrorIsNotCached(t *testing.T) {
	fail := true
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		if fail {
			return "", errors.New("io error")
		}
		return "x y z", nil
	})

	if _, err := cache.Count(context.Background(), "/p"); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	count, err := cache.Count(context.Background(), "/p")
	if err != nil || count != 3 {
		t.Errorf("retry after failure: count=%d err=%v", count, err)
	}
}

func TestPeekDoesNotCompute(t *testing.T) {
	var loads atomic.Int32
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		loads.Add(1)
		return "x", nil
	})

	if _, ok := cache.Peek("/p"); ok {
		t.Error("peek on cold cache reported a count")
	}
	if loads.Load() != 0 {
		t.Error("peek triggered a load")
	}

	cache.Count(context.Background(), "/p")
	if count, ok := cache.Peek("/p"); !ok || count != 1 {
		t.Errorf("peek after count = %d, %v", count, ok)
	}
}

func TestCountAllSumsAndBounds(t *testing.T) {
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		return strings.Repeat("w ", len(path)), nil
	})

	paths := []string{"/a", "/bb", "/ccc"}
	total, err := cache.CountAll(context.Background(), paths, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2+3+4 {
		t.Errorf("total = %d, want 9", total)
	}
}

func TestForgetForcesRecount(t *testing.T) {
	var loads atomic.Int32
	cache := NewCache(wordCounter{}, func(ctx context.Context, path string) (string, error) {
		loads.Add(1)
		return "x", nil
	})

	cache.Count(context.Background(), "/p")
	cache.Forget("/p")
	cache.Count(context.Background(), "/p")
	if loads.Load() != 2 {
		t.Errorf("loader ran %d times, want 2 after forget", loads.Load())
	}
}
