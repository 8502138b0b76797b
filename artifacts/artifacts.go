// Package artifacts persists synthesized speech on disk, bounded by a
// keep-newest retention policy so a long-running conversation cannot grow
// the directory without limit.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voicekit/core"
)

// Ref identifies a stored artifact by file name, e.g. "response_1712345678901.wav".
type Ref string

const (
	namePrefix = "response_"
	nameSuffix = ".wav"

	// DefaultKeep bounds how many synthesized responses are retained.
	DefaultKeep = 10
)

// Store writes and serves artifact files from a single directory.
type Store struct {
	dir    string
	keep   int
	logger *core.Logger
}

func NewStore(dir string, keep int, logger *core.Logger) (*Store, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &core.StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	return &Store{dir: dir, keep: keep, logger: logger}, nil
}

// Save writes audio bytes keyed by the creation timestamp in milliseconds,
// then prunes anything beyond the retention bound. Retention failures are
// logged only; they never fail the save.
func (s *Store) Save(audio []byte, timestampMs int64) (Ref, error) {
	name := fmt.Sprintf("%s%d%s", namePrefix, timestampMs, nameSuffix)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, audio, 0644); err != nil {
		return "", &core.StorageError{Op: "write", Path: path, Err: err}
	}
	s.EnforceRetention(s.keep)
	return Ref(name), nil
}

// Fetch returns the bytes for a reference, or core.ErrNotFound when the
// artifact was never written or has since been evicted.
func (s *Store) Fetch(ref Ref) ([]byte, error) {
	name := string(ref)
	if !validName(name) {
		return nil, core.ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, &core.StorageError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}

// EnforceRetention deletes every artifact beyond rank keep, ordered newest
// first by modification time. Ordering by time rather than by name keeps
// eviction oldest-first even if timestamp keys collide across runs.
func (s *Store) EnforceRetention(keep int) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warnf("artifacts: list %q: %v", s.dir, err)
		return
	}

	type artifact struct {
		name  string
		mtime time.Time
	}
	var found []artifact
	for _, e := range entries {
		if e.IsDir() || !validName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, artifact{name: e.Name(), mtime: info.ModTime()})
	}
	if len(found) <= keep {
		return
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].mtime.Equal(found[j].mtime) {
			return found[i].name > found[j].name
		}
		return found[i].mtime.After(found[j].mtime)
	})
	for _, old := range found[keep:] {
		if err := os.Remove(filepath.Join(s.dir, old.name)); err != nil {
			s.logger.Warnf("artifacts: remove %q: %v", old.name, err)
			continue
		}
		s.logger.Infof("artifacts: evicted %s", old.name)
	}
}

// validName also guards against path traversal through a reference.
func validName(name string) bool {
	return strings.HasPrefix(name, namePrefix) &&
		strings.HasSuffix(name, nameSuffix) &&
		!strings.ContainsAny(name, `/\`)
}
