// Package options configures an ignitekv store: the data directory, the
// compaction trigger threshold, and the fsync policy. It follows the same
// functional-options shape as the teacher package it replaces (OptionFunc,
// With* constructors, a defaults.go const block) but drops the segment-size
// rotation knobs — this engine rotates generations on compaction, not on
// segment size, so there is no equivalent setting to expose.
package options

import "go.uber.org/zap"

// Options controls the behavior of an ignitekv store.
type Options struct {
	// DataDir is the directory generations and the engine marker are
	// stored in. Unlike the teacher's hardcoded default, a library has
	// no business assuming a system path — callers must set this.
	DataDir string

	// CompactionThreshold is the number of uncompacted bytes that triggers
	// compaction on the next Set/Remove. Matches spec COMPACTION_THRESHOLD.
	CompactionThreshold uint64

	// Sync controls whether the writer calls File.Sync() after every
	// flush. false (the default) leaves durability up to the OS page
	// cache, matching the source this spec was distilled from.
	Sync bool

	// Logger receives structured logs for recovery, compaction, and
	// swallowed stale-file deletion failures. Defaults to a production
	// zap logger from pkg/logger when left nil.
	Logger *zap.SugaredLogger
}

// OptionFunc mutates an Options being built.
type OptionFunc func(*Options)

// WithDataDir sets the directory the store reads and writes generations in.
func WithDataDir(dir string) OptionFunc {
	return func(o *Options) {
		if dir != "" {
			o.DataDir = dir
		}
	}
}

// WithCompactionThreshold overrides the default 1 MiB uncompacted-bytes
// trigger for compaction.
func WithCompactionThreshold(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactionThreshold = bytes
		}
	}
}

// WithSync enables File.Sync() after every append, trading write latency
// for a stronger durability guarantee than the OS page cache alone.
func WithSync(sync bool) OptionFunc {
	return func(o *Options) { o.Sync = sync }
}

// WithLogger overrides the default logger, letting an embedder route
// ignitekv's logs into its own zap pipeline.
func WithLogger(log *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// New builds an Options from defaults plus the given overrides.
func New(opts ...OptionFunc) *Options {
	o := NewDefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return &o
}
