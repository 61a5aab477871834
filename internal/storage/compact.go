package storage

import "github.com/iamNilotpal/ignitekv/internal/index"

// compact rewrites every live record into a fresh generation and retires
// everything older (spec C7, §4.7). w.mu is already held by the caller
// (Set or Remove).
//
// The "+1/+2" hop, taken straight from original_source/kvs4's compact():
// the writer's own generation jumps by two — to current_gen+2 — before a
// single byte of the compaction pass is written, and the compaction pass
// itself targets current_gen+1. That ordering means a writer never
// shares a generation number with the file compaction is currently
// producing, even if compaction were ever split across goroutines; here
// it also just keeps the on-disk generation sequence identical to the
// reference implementation's.
func (w *Writer) compact() error {
	compactionGen := w.currentGen + 1
	newCurrentGen := w.currentGen + 2

	w.logger.Infow(
		"starting compaction",
		"dataDir", w.dataDir,
		"currentGen", w.currentGen,
		"compactionGen", compactionGen,
		"newCurrentGen", newCurrentGen,
		"uncompacted", w.uncompacted,
		"liveKeys", w.idx.Len(),
	)

	newLog, err := createLog(w.dataDir, newCurrentGen)
	if err != nil {
		return err
	}
	oldLog := w.log
	w.log = newLog
	w.currentGen = newCurrentGen
	oldLog.Close()

	compactionLog, err := createLog(w.dataDir, compactionGen)
	if err != nil {
		return err
	}

	snapshot := w.idx.Snapshot()
	for _, entry := range snapshot {
		off := compactionLog.Pos()
		n, err := w.compactionReader.CopyRecord(entry.Pos, compactionLog)
		if err != nil {
			compactionLog.Close()
			return err
		}
		w.idx.Update(entry.Key, index.Pos{Gen: compactionGen, Off: off, Len: n})
	}

	if err := compactionLog.Flush(); err != nil {
		compactionLog.Close()
		return err
	}
	if w.sync {
		if err := compactionLog.Sync(); err != nil {
			compactionLog.Close()
			return err
		}
	}
	if err := compactionLog.Close(); err != nil {
		return err
	}

	// Publish the new safe point before deleting anything: every index
	// entry already points at compactionGen, and each reader handle drops
	// its cached handles on older generations the next time it reads.
	// The compactor does not wait for other readers to do so; a handle
	// one of them already holds on a stale file stays readable after the
	// unlink on platforms with POSIX unlink-while-open semantics.
	w.safePoint.Store(compactionGen)
	w.compactionReader.closeStaleHandles()

	staleGens, err := sortedGenerations(w.dataDir)
	if err != nil {
		return err
	}
	removed := 0
	for _, gen := range staleGens {
		if gen >= compactionGen {
			continue
		}
		if err := deleteLog(w.dataDir, gen); err != nil {
			w.logger.Warnw("failed to remove stale generation file", "generation", gen, "error", err)
			continue
		}
		removed++
	}

	w.logger.Infow(
		"compaction complete",
		"dataDir", w.dataDir,
		"compactionGen", compactionGen,
		"newCurrentGen", newCurrentGen,
		"liveKeys", len(snapshot),
		"staleGenerationsRemoved", removed,
	)

	w.uncompacted = 0
	return nil
}
