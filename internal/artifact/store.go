// Package artifact persists synthesized reply audio and serves it back
// by reference. Artifacts are keyed per turn instead of sharing a single
// slot, so an in-flight playback can never be overwritten by the next
// synthesis.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	refPrefix = "reply_"
	refSuffix = ".wav"

	// keepArtifacts bounds how many recent artifacts stay on disk.
	keepArtifacts = 16
)

// Store keeps reply audio files in one directory.
type Store struct {
	dir string

	mu   sync.Mutex
	refs []string // oldest first
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes data under a fresh per-turn key and returns the reference.
func (s *Store) Save(data []byte) (string, error) {
	ref := refPrefix + uuid.NewString() + refSuffix
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("artifact: write %s: %w", ref, err)
	}

	s.mu.Lock()
	s.refs = append(s.refs, ref)
	var evict []string
	if n := len(s.refs) - keepArtifacts; n > 0 {
		evict = append(evict, s.refs[:n]...)
		s.refs = append([]string(nil), s.refs[n:]...)
	}
	s.mu.Unlock()

	for _, old := range evict {
		_ = os.Remove(filepath.Join(s.dir, old))
	}
	return ref, nil
}

// Read returns the stored audio for a reference. Anything that is not a
// plain artifact name is reported as not found.
func (s *Store) Read(ref string) ([]byte, error) {
	if !validRef(ref) {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(s.dir, ref))
}

func validRef(ref string) bool {
	return ref == filepath.Base(ref) &&
		strings.HasPrefix(ref, refPrefix) &&
		strings.HasSuffix(ref, refSuffix) &&
		!strings.Contains(ref, "..")
}
