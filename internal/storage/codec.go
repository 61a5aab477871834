package storage

import (
	"errors"
	"io"

	json "github.com/goccy/go-json"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
)

// CommandOp discriminates the two record shapes spec §3 allows.
type CommandOp uint8

const (
	OpSet CommandOp = iota
	OpRemove
)

// Command is the in-memory form of a decoded record: a Set carries both
// Key and Value, a Remove carries only Key.
type Command struct {
	Op    CommandOp
	Key   string
	Value string
}

// wireSet/wireRemove/wireCommand mirror the externally-tagged JSON shape
// spec §6 mandates: {"Set":{"key":...,"value":...}} or
// {"Remove":{"key":...}}, the same representation original_source/kvs4's
// serde-derived enum produces.
type wireSet struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wireRemove struct {
	Key string `json:"key"`
}

type wireCommand struct {
	Set    *wireSet    `json:"Set,omitempty"`
	Remove *wireRemove `json:"Remove,omitempty"`
}

// encodeCommand returns the JSON encoding of cmd, with no trailing
// delimiter — records are concatenated back-to-back with no framing.
func encodeCommand(cmd Command) ([]byte, error) {
	var w wireCommand
	switch cmd.Op {
	case OpSet:
		w.Set = &wireSet{Key: cmd.Key, Value: cmd.Value}
	case OpRemove:
		w.Remove = &wireRemove{Key: cmd.Key}
	}
	return json.Marshal(w)
}

func fromWire(w wireCommand) (Command, error) {
	switch {
	case w.Set != nil:
		return Command{Op: OpSet, Key: w.Set.Key, Value: w.Set.Value}, nil
	case w.Remove != nil:
		return Command{Op: OpRemove, Key: w.Remove.Key}, nil
	default:
		return Command{}, errors.New("record has neither Set nor Remove")
	}
}

// decodeOneCommand decodes exactly one record from r, returning it
// together with the underlying cause on codec failure so the caller can
// wrap it with path context.
func decodeOneCommand(r io.Reader) (Command, error) {
	var w wireCommand
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return Command{}, err
	}
	return fromWire(w)
}

// recordStream streams consecutive JSON-encoded Commands from r, exposing
// the byte offset after each decode via InputOffset — the Go analogue of
// serde_json::Deserializer::into_iter().byte_offset() used by
// original_source/kvs4's `load` and compaction routines to recover record
// boundaries from an unframed byte stream.
type recordStream struct {
	dec *json.Decoder
}

func newRecordStream(r io.Reader) *recordStream {
	return &recordStream{dec: json.NewDecoder(r)}
}

// Next decodes the next record. It returns io.EOF (unwrapped) once the
// stream is exhausted with no trailing bytes, and a *kverrors.Error of
// kind CodecError if a partial/corrupt record trails the stream (spec §7:
// "the stream decoder stops at the first parse failure"). offset is the
// number of stream bytes consumed once Next returns, including on EOF.
func (s *recordStream) Next(path string) (cmd Command, offset int64, err error) {
	var w wireCommand
	if err := s.dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return Command{}, s.dec.InputOffset(), io.EOF
		}
		return Command{}, s.dec.InputOffset(), kverrors.NewCodecError(err, path)
	}
	cmd, err = fromWire(w)
	if err != nil {
		return Command{}, s.dec.InputOffset(), kverrors.NewCodecError(err, path)
	}
	return cmd, s.dec.InputOffset(), nil
}

// NextForRecovery behaves like Next, but treats a partial record at the
// very end of the stream as the end of usable history rather than a
// fatal codec error. A process killed mid-append leaves exactly this
// shape on disk — a well-formed prefix of records followed by a
// truncated trailing JSON value — and recovery's job is to recover
// every complete record that made it to disk, not to refuse to open the
// store because the very last write never finished.
func (s *recordStream) NextForRecovery(path string) (cmd Command, offset int64, done bool, err error) {
	var w wireCommand
	if decErr := s.dec.Decode(&w); decErr != nil {
		if errors.Is(decErr, io.EOF) || errors.Is(decErr, io.ErrUnexpectedEOF) {
			return Command{}, s.dec.InputOffset(), true, nil
		}
		return Command{}, s.dec.InputOffset(), true, kverrors.NewCodecError(decErr, path)
	}
	cmd, err = fromWire(w)
	if err != nil {
		return Command{}, s.dec.InputOffset(), true, kverrors.NewCodecError(err, path)
	}
	return cmd, s.dec.InputOffset(), false, nil
}
