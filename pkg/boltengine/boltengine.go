// Package boltengine is the alternative pluggable engine spec §4.9 calls
// for: a kvengine.Engine backed by go.etcd.io/bbolt's embedded B+tree
// instead of the log-structured design in internal/engine. It exists to
// prove the engine contract is real — any caller coded against
// kvengine.Engine can swap ignitekv's log engine for this one with no
// other change — and to give the rest of the pack's bbolt dependency
// (seen in other_examples' storage layers) a concrete home.
package boltengine

import (
	"errors"

	bolt "go.etcd.io/bbolt"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"github.com/iamNilotpal/ignitekv/pkg/filesys"
	"github.com/iamNilotpal/ignitekv/pkg/kvengine"
)

// EngineKind is the marker string this engine stamps on a data
// directory via kvengine.EnsureMarker.
const EngineKind = "bbolt"

var bucketName = []byte("ignitekv")

// Engine is a kvengine.Engine backed by a single bbolt database file and
// a single bucket.
type Engine struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path/data.db,
// stamping or checking its ENGINE marker the same way the log engine
// does, so the two engines can never be confused for one another.
func Open(path string) (*Engine, error) {
	if err := filesys.CreateDir(path, 0o755); err != nil {
		return nil, kverrors.NewIoError(err, path)
	}
	if err := kvengine.EnsureMarker(path, EngineKind); err != nil {
		return nil, err
	}

	dbPath := path + "/data.db"
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, kverrors.NewIoError(err, dbPath)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, kverrors.NewIoError(err, dbPath)
	}

	return &Engine{db: db}, nil
}

var _ kvengine.Engine = (*Engine)(nil)

// Set stores value under key.
func (e *Engine) Set(key, value string) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return kverrors.NewIoError(err, "")
	}
	return nil
}

// Get returns the value stored under key, if any.
func (e *Engine) Get(key string) (string, bool, error) {
	var value []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, kverrors.NewIoError(err, "")
	}
	if value == nil {
		return "", false, nil
	}
	return string(value), true, nil
}

// Remove deletes key. bbolt's Delete is normally a silent no-op on a
// missing key; this checks existence inside the same transaction first
// so Remove on an absent key returns kverrors.ErrKeyNotFound, matching
// the log engine's tombstone semantics (spec §4.9 requires both engines
// to agree on this).
func (e *Engine) Remove(key string) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return errKeyNotFound
		}
		return b.Delete([]byte(key))
	})
	if errors.Is(err, errKeyNotFound) {
		return kverrors.NewKeyNotFound(key)
	}
	if err != nil {
		return kverrors.NewIoError(err, "")
	}
	return nil
}

var errKeyNotFound = errors.New("boltengine: key not found")

// Close closes the underlying bbolt database.
func (e *Engine) Close() error {
	return e.db.Close()
}
