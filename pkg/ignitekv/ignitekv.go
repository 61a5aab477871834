// Package ignitekv is the public entry point to the log-structured
// storage engine (spec C8's façade exposed to callers outside this
// module). It mirrors the shape of the teacher's pkg/ignite package —
// Open/Set/Get/Remove/Close on a thin wrapper — but with every method
// backed by a real engine instead of a stub returning nil.
package ignitekv

import (
	"errors"

	"github.com/iamNilotpal/ignitekv/internal/engine"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/options"
)

// errEmptyDataDir is returned, wrapped as an IoError, when Open is
// called without a data directory configured.
var errEmptyDataDir = errors.New("ignitekv: DataDir must be set")

// Store is a handle to an open ignitekv data directory. The zero value
// is not usable; construct one with Open.
type Store struct {
	eng *engine.Engine
}

// Open opens (creating if necessary) the data directory named in opts
// and returns a ready Store. opts.DataDir must be set.
func Open(opts ...options.OptionFunc) (*Store, error) {
	o := options.New(opts...)
	if o.DataDir == "" {
		return nil, kverrors.NewIoError(errEmptyDataDir, "")
	}

	eng, err := engine.Open(o.DataDir, o)
	if err != nil {
		return nil, err
	}
	return &Store{eng: eng}, nil
}

// Set stores value under key, replacing any existing value.
func (s *Store) Set(key, value string) error {
	return s.eng.Set(key, value)
}

// Get returns the value stored under key. The second return reports
// presence: a missing key yields ("", false, nil), never an error.
func (s *Store) Get(key string) (string, bool, error) {
	return s.eng.Get(key)
}

// Remove deletes key, returning an error satisfying
// errors.Is(err, kverrors.ErrKeyNotFound) if it was absent.
func (s *Store) Remove(key string) error {
	return s.eng.Remove(key)
}

// Clone returns a new Store sharing this one's index and writer but
// with its own reader file-handle cache, for handing to a separate
// reading goroutine (spec §5).
func (s *Store) Clone() *Store {
	return &Store{eng: s.eng.Clone()}
}

// Close flushes and releases this Store's resources. Clones must be
// closed independently.
func (s *Store) Close() error {
	return s.eng.Close()
}
