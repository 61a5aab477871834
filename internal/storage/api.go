package storage

import (
	"os"
	"sync/atomic"

	"github.com/iamNilotpal/ignitekv/internal/index"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"go.uber.org/zap"
)

// This file is the package's public surface toward internal/engine: the
// recovery, writer, and reader plumbing above stays unexported so
// nothing outside this module can depend on record layout or generation
// naming directly.

// NewWriter opens dir's currentGen log file and returns a ready Writer
// seeded with the uncompacted byte count recovery has already computed.
func NewWriter(
	dir string,
	currentGen uint64,
	uncompacted uint64,
	idx *index.Index,
	safePoint *atomic.Uint64,
	compactionThreshold uint64,
	sync bool,
	logger *zap.SugaredLogger,
) (*Writer, error) {
	return newWriter(dir, currentGen, uncompacted, idx, safePoint, compactionThreshold, sync, logger)
}

// NewReaderHandle returns a fresh per-goroutine reader handle over dir.
func NewReaderHandle(dir string, safePoint *atomic.Uint64) *ReaderHandle {
	return newReaderHandle(dir, safePoint)
}

// SortedGenerations lists dir's generation numbers in ascending order.
func SortedGenerations(dir string) ([]uint64, error) {
	return sortedGenerations(dir)
}

// LogPath returns the path of gen's log file within dir.
func LogPath(dir string, gen uint64) string {
	return logPath(dir, gen)
}

// OpenGenerationStream opens gen's log file for sequential replay and
// returns a recordStream over it together with a close function the
// caller must invoke once done.
func OpenGenerationStream(dir string, gen uint64) (*recordStream, func() error, error) {
	path := logPath(dir, gen)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, kverrors.NewIoError(err, path)
	}
	return newRecordStream(f), f.Close, nil
}
