// Package kvengine defines the narrow contract every pluggable storage
// engine satisfies (spec C9), plus the on-disk ENGINE marker that keeps a
// data directory from being opened by the wrong engine implementation.
package kvengine

import (
	"os"
	"path/filepath"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/filesys"
)

// Engine is the contract ignitekv.Open and the alternative bbolt-backed
// engine both satisfy. Get's bool reports presence: (value, false, nil)
// never happens — a missing key returns ("", false, nil), never an
// error, matching spec §4.9's table.
type Engine interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Remove(key string) error
	Close() error
}

// markerFile names the file, not a generation number, so it never
// collides with the \d+.log naming gendir.go scans for.
const markerFile = "ENGINE"

// EnsureMarker resolves spec §9 Open Question (b): a data directory
// records which engine created it in a plain-text ENGINE file. dir must
// already exist. A directory with no ENGINE file is stamped with kind;
// one already stamped with a different kind fails with EngineMismatch
// rather than silently misinterpreting its log format.
func EnsureMarker(dir, kind string) error {
	path := filepath.Join(dir, markerFile)

	existing, err := filesys.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return kverrors.NewIoError(err, path)
		}
		if err := filesys.WriteFile(path, 0o644, []byte(kind)); err != nil {
			return kverrors.NewIoError(err, path)
		}
		return nil
	}

	if got := string(existing); got != kind {
		return kverrors.NewEngineMismatch(kind, got, path)
	}
	return nil
}
