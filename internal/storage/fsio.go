// Package storage implements the log-structured on-disk layer: positioned
// buffered I/O (C1), generation file naming and discovery (C2), the record
// codec (C3), the per-thread reader handle (C5), the single writer (C6),
// and the compactor (C7).
package storage

import (
	"bufio"
	"io"
	"os"
)

// posWriter wraps a buffered, append-mode file with a running byte offset.
// The offset only advances on a successful write; a failed write leaves
// pos untouched, so callers can always trust pos as "bytes durably
// queued so far" even after an error.
type posWriter struct {
	f   *os.File
	buf *bufio.Writer
	pos int64
}

func newPosWriter(f *os.File) (*posWriter, error) {
	off, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &posWriter{f: f, buf: bufio.NewWriter(f), pos: off}, nil
}

// Write buffers p and advances pos by the number of bytes accepted. On
// error pos is left unchanged.
func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	if err != nil {
		return n, err
	}
	w.pos += int64(n)
	return n, nil
}

// Pos returns the current logical end-of-stream offset, including bytes
// still sitting in the bufio buffer.
func (w *posWriter) Pos() int64 { return w.pos }

// Flush pushes buffered bytes to the OS; no fsync is implied.
func (w *posWriter) Flush() error { return w.buf.Flush() }

// Sync flushes and then fsyncs the underlying file, used when
// options.Options.Sync is enabled.
func (w *posWriter) Sync() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *posWriter) Close() error { return w.f.Close() }

// posReader wraps a file opened for random access. Every read takes an
// explicit offset (ReadAt for ReadCommand, CopyFrom for compaction's
// byte copy), so no Seek is ever issued; pos records the offset just past
// the last successful ReadAt and is not advanced by CopyFrom.
type posReader struct {
	f   *os.File
	pos int64
}

func openPosReader(path string) (*posReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &posReader{f: f}, nil
}

// ReadAt reads exactly len(buf) bytes starting at off, failing the read
// entirely (and leaving pos unchanged) on a short read or error.
func (r *posReader) ReadAt(buf []byte, off int64) error {
	n, err := r.f.ReadAt(buf, off)
	if err != nil {
		return err
	}
	r.pos = off + int64(n)
	return nil
}

// CopyFrom copies exactly n bytes starting at off into w, used by the
// compactor to byte-copy a live record into the compaction generation
// without re-encoding it.
func (r *posReader) CopyFrom(w io.Writer, off, n int64) (int64, error) {
	section := io.NewSectionReader(r.f, off, n)
	return io.Copy(w, section)
}

func (r *posReader) Close() error { return r.f.Close() }
