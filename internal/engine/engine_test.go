package engine

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/iamNilotpal/ignitekv/internal/storage"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func openTestEngine(t *testing.T, dir string, opts ...options.OptionFunc) *Engine {
	t.Helper()
	o := options.New(append([]options.OptionFunc{
		options.WithDataDir(dir),
		options.WithLogger(logger.Noop()),
	}, opts...)...)

	eng, err := Open(dir, o)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestSetGetRemove(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())

	if err := eng.Set("key1", "value1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	v, ok, err := eng.Get("key1")
	if err != nil || !ok || v != "value1" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := eng.Set("key1", "value2"); err != nil {
		t.Fatalf("Set (overwrite) error: %v", err)
	}
	v, ok, err = eng.Get("key1")
	if err != nil || !ok || v != "value2" {
		t.Fatalf("Get after overwrite = %q, %v, %v", v, ok, err)
	}

	if err := eng.Remove("key1"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	_, ok, err = eng.Get("key1")
	if err != nil || ok {
		t.Fatalf("Get after Remove = ok=%v, err=%v, want ok=false, err=nil", ok, err)
	}

	err = eng.Remove("key1")
	if !errors.Is(err, kverrors.ErrKeyNotFound) {
		t.Fatalf("Remove of missing key = %v, want ErrKeyNotFound", err)
	}
}

func TestGetMissingKeyIsNotAnError(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())
	v, ok, err := eng.Get("nope")
	if err != nil || ok || v != "" {
		t.Fatalf("Get(missing) = %q, %v, %v", v, ok, err)
	}
}

func TestReopenRecoversAllKeys(t *testing.T) {
	dir := t.TempDir()

	const n = 10_000
	func() {
		eng := openTestEngine(t, dir)
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("key-%d", i)
			if err := eng.Set(key, fmt.Sprintf("value-%d", i)); err != nil {
				t.Fatalf("Set(%s) error: %v", key, err)
			}
		}
		if err := eng.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	}()

	reopened, err := Open(dir, options.New(options.WithDataDir(dir), options.WithLogger(logger.Noop())))
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		want := fmt.Sprintf("value-%d", i)
		got, ok, err := reopened.Get(key)
		if err != nil || !ok || got != want {
			t.Fatalf("Get(%s) after reopen = %q, %v, %v, want %q", key, got, ok, err, want)
		}
	}
}

func TestCompactionBoundsGenerationCount(t *testing.T) {
	dir := t.TempDir()
	eng := openTestEngine(t, dir, options.WithCompactionThreshold(1024))

	const n = 2000
	for i := 0; i < n; i++ {
		if err := eng.Set("the-same-key", fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}

	got, ok, err := eng.Get("the-same-key")
	if err != nil || !ok || got != fmt.Sprintf("value-%d", n-1) {
		t.Fatalf("Get after repeated Set = %q, %v, %v", got, ok, err)
	}

	gens, err := sortedGenerationsFor(dir)
	if err != nil {
		t.Fatalf("sortedGenerationsFor error: %v", err)
	}
	if len(gens) > 3 {
		t.Fatalf("compaction left %d generation files on disk for a single repeatedly-overwritten key, want at most 3", len(gens))
	}
}

func TestReopenToleratesTruncatedTrailingRecord(t *testing.T) {
	dir := t.TempDir()

	func() {
		eng := openTestEngine(t, dir)
		if err := eng.Set("a", "1"); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if err := eng.Set("b", "2"); err != nil {
			t.Fatalf("Set error: %v", err)
		}
		if err := eng.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	}()

	gens, err := sortedGenerationsFor(dir)
	if err != nil || len(gens) == 0 {
		t.Fatalf("sortedGenerationsFor = %v, %v", gens, err)
	}
	path := storage.LogPath(dir, gens[len(gens)-1])

	// Simulate a process killed mid-append: append a record missing its
	// closing bytes. recovery must still see "a" and "b" and simply
	// discard the partial trailing write.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	if _, err := f.Write([]byte(`{"Set":{"key":"c","val`)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := Open(dir, options.New(options.WithDataDir(dir), options.WithLogger(logger.Noop())))
	if err != nil {
		t.Fatalf("reopen after truncated tail failed: %v", err)
	}
	defer reopened.Close()

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		got, ok, err := reopened.Get(key)
		if err != nil || !ok || got != want {
			t.Fatalf("Get(%s) = %q, %v, %v, want %q", key, got, ok, err, want)
		}
	}
	if _, ok, _ := reopened.Get("c"); ok {
		t.Fatalf("Get(c) found the truncated record's key")
	}

	if err := reopened.Set("c", "3"); err != nil {
		t.Fatalf("Set after recovery error: %v", err)
	}
	if got, ok, err := reopened.Get("c"); err != nil || !ok || got != "3" {
		t.Fatalf("Get(c) after Set = %q, %v, %v", got, ok, err)
	}
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())

	if err := eng.Set("shared", "initial"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		reader := eng.Clone()
		go func() {
			defer wg.Done()
			defer reader.Close()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if _, _, err := reader.Get("shared"); err != nil {
					t.Errorf("concurrent Get error: %v", err)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		if err := eng.Set("shared", fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("Set error: %v", err)
		}
	}
	close(stop)
	wg.Wait()
}
