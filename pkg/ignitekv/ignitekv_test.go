package ignitekv

import (
	"errors"
	"os"
	"testing"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/logger"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

func TestOpenRequiresDataDir(t *testing.T) {
	if _, err := Open(options.WithLogger(logger.Noop())); err == nil {
		t.Fatalf("Open with no DataDir returned nil error")
	}
}

func TestBasicSetGetRemove(t *testing.T) {
	store, err := Open(options.WithDataDir(t.TempDir()), options.WithLogger(logger.Noop()))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer store.Close()

	if err := store.Set("name", "ignitekv"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	v, ok, err := store.Get("name")
	if err != nil || !ok || v != "ignitekv" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := store.Remove("name"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if err := store.Remove("name"); !errors.Is(err, kverrors.ErrKeyNotFound) {
		t.Fatalf("second Remove = %v, want ErrKeyNotFound", err)
	}
}

func TestReopenAfterClose(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(options.WithDataDir(dir), options.WithLogger(logger.Noop()))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := Open(options.WithDataDir(dir), options.WithLogger(logger.Noop()))
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestMismatchedEngineMarkerRejected(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(options.WithDataDir(dir), options.WithLogger(logger.Noop()))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	store.Close()

	// Overwrite the marker a different engine would have written, and
	// confirm the log engine refuses to open it rather than misreading
	// a foreign on-disk format.
	if err := os.WriteFile(dir+"/ENGINE", []byte("bbolt"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	_, err = Open(options.WithDataDir(dir), options.WithLogger(logger.Noop()))
	if !kverrors.Is(err, kverrors.KindEngineMismatch) {
		t.Fatalf("Open with mismatched marker = %v, want EngineMismatch", err)
	}
}
