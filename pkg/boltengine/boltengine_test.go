package boltengine

import (
	"errors"
	"testing"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
)

func TestSetGetRemove(t *testing.T) {
	eng, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer eng.Close()

	if err := eng.Set("a", "1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	v, ok, err := eng.Get("a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := eng.Remove("a"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, ok, _ := eng.Get("a"); ok {
		t.Fatalf("Get after Remove still found the key")
	}
}

func TestRemoveMissingKeyIsKeyNotFound(t *testing.T) {
	eng, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer eng.Close()

	err = eng.Remove("nope")
	if !errors.Is(err, kverrors.ErrKeyNotFound) {
		t.Fatalf("Remove(missing) = %v, want ErrKeyNotFound", err)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := eng.Set("k", "v"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}
