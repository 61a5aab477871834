package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	kverrors "github.com/iamNilotpal/ignitekv/pkg/errors"
)

// genFileRe matches exactly the spec's <gen>.log naming; anything else in
// the data directory (notably the ENGINE marker) is ignored by
// sortedGenerations rather than rejected, since the directory is allowed
// to carry files the engine itself doesn't own.
var genFileRe = regexp.MustCompile(`^(\d+)\.log$`)

// logPath returns the path of the generation file gen within dir.
func logPath(dir string, gen uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d.log", gen))
}

// sortedGenerations returns every generation number present in dir,
// ascending. Malformed file names are silently ignored, matching spec
// C2's sorted_generations contract.
func sortedGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kverrors.NewIoError(err, dir)
	}

	gens := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := genFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		gen, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// createLog creates gen's log file with append+write+create semantics,
// empty, and returns a positioned writer over it.
func createLog(dir string, gen uint64) (*posWriter, error) {
	path := logPath(dir, gen)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, kverrors.NewIoError(err, path)
	}
	return newPosWriter(f)
}

// deleteLog removes gen's log file. Per spec §4.2/§4.7, a delete failure
// here is never fatal — the caller logs and swallows it.
func deleteLog(dir string, gen uint64) error {
	return os.Remove(logPath(dir, gen))
}
