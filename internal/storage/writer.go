package storage

import (
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/ignitekv/internal/index"
	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
	"go.uber.org/zap"
)

// Writer is the single append-only writer over a data directory (spec
// C6). Exactly one Writer exists per open engine; Set and Remove take
// writer.mu for their whole duration, matching original_source/kvs4's
// Arc<Mutex<KvStoreWriter>> — there is never more than one writer
// goroutine active, so the lock exists to serialize callers, not to
// protect against true parallel writers.
type Writer struct {
	mu sync.Mutex

	dataDir              string
	compactionThreshold  uint64
	sync                 bool
	logger               *zap.SugaredLogger
	idx                  *index.Index
	safePoint            *atomic.Uint64

	currentGen  uint64
	log         *posWriter
	uncompacted uint64

	// compactionReader is the writer's own reader handle, used only by
	// compact to copy live record bytes forward. It is private to the
	// writer so compaction never contends with application readers for
	// cache slots.
	compactionReader *ReaderHandle
}

// newWriter opens (creating if necessary) the log file for currentGen
// and returns a ready Writer. The caller has already run recovery and
// knows currentGen, uncompacted, and the populated index.
func newWriter(
	dataDir string,
	currentGen uint64,
	uncompacted uint64,
	idx *index.Index,
	safePoint *atomic.Uint64,
	compactionThreshold uint64,
	sync bool,
	logger *zap.SugaredLogger,
) (*Writer, error) {
	log, err := createLog(dataDir, currentGen)
	if err != nil {
		return nil, err
	}
	return &Writer{
		dataDir:             dataDir,
		compactionThreshold: compactionThreshold,
		sync:                sync,
		logger:              logger,
		idx:                 idx,
		safePoint:           safePoint,
		currentGen:          currentGen,
		log:                 log,
		uncompacted:         uncompacted,
		compactionReader:    newReaderHandle(dataDir, safePoint),
	}, nil
}

// Set appends a Set record, updates the index, and triggers compaction
// once the threshold is crossed (spec §4.6).
func (w *Writer) Set(key, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := encodeCommand(Command{Op: OpSet, Key: key, Value: value})
	if err != nil {
		return kverrors.NewCodecError(err, w.dataDir)
	}

	pos := index.Pos{Gen: w.currentGen, Off: w.log.Pos(), Len: int64(len(payload))}
	if _, err := w.log.Write(payload); err != nil {
		return kverrors.NewIoError(err, logPath(w.dataDir, w.currentGen))
	}
	if err := w.flushOrSync(); err != nil {
		return err
	}

	if old, had := w.idx.Insert(key, pos); had {
		w.uncompacted += uint64(old.Len)
	}

	return w.maybeCompact()
}

// Remove appends a tombstone record and drops key from the index. It
// returns kverrors.ErrKeyNotFound if key is absent, without writing
// anything — matching spec §4.6's "Remove on a missing key is an error,
// observed before any bytes are appended".
func (w *Writer) Remove(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	oldPos, ok := w.idx.Get(key)
	if !ok {
		return kverrors.NewKeyNotFound(key)
	}

	payload, err := encodeCommand(Command{Op: OpRemove, Key: key})
	if err != nil {
		return kverrors.NewCodecError(err, w.dataDir)
	}

	pos := w.log.Pos()
	if _, err := w.log.Write(payload); err != nil {
		return kverrors.NewIoError(err, logPath(w.dataDir, w.currentGen))
	}
	if err := w.flushOrSync(); err != nil {
		return err
	}

	w.idx.Remove(key)
	// The displaced Set's bytes and the tombstone record's own bytes are
	// both dead weight once the key is gone — recovery's replayGeneration
	// charges both the same way, so uncompacted must not skip either.
	w.uncompacted += uint64(oldPos.Len) + uint64(w.log.Pos()-pos)

	// The compaction failure here is surfaced to the caller rather than
	// swallowed: the tombstone is already durable and the index already
	// reflects the removal, so a failed compaction never loses the
	// Remove itself, only defers reclaiming space until the next
	// threshold crossing.
	return w.maybeCompact()
}

func (w *Writer) flushOrSync() error {
	var err error
	if w.sync {
		err = w.log.Sync()
	} else {
		err = w.log.Flush()
	}
	if err != nil {
		return kverrors.NewIoError(err, logPath(w.dataDir, w.currentGen))
	}
	return nil
}

func (w *Writer) maybeCompact() error {
	if w.uncompacted <= w.compactionThreshold {
		return nil
	}
	return w.compact()
}

// Close flushes and closes the active log file and the writer's private
// reader handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.log.Flush(); err != nil {
		return kverrors.NewIoError(err, logPath(w.dataDir, w.currentGen))
	}
	if err := w.log.Close(); err != nil {
		return kverrors.NewIoError(err, logPath(w.dataDir, w.currentGen))
	}
	return w.compactionReader.Close()
}
