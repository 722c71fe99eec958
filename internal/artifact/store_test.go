package artifact

import (
	"bytes"
	"fmt"
	"os"
	"testing"
)

func TestSaveAndRead(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ref, err := s.Save([]byte("wav-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Read(ref)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte("wav-bytes")) {
		t.Fatalf("read mismatch: %q", got)
	}
}

func TestRead_RejectsForeignNames(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, ref := range []string{
		"../etc/passwd",
		"reply_../../x.wav",
		"other.wav",
		"reply_abc.mp3",
		"",
	} {
		if _, err := s.Read(ref); !os.IsNotExist(err) {
			t.Fatalf("expected not-found for %q, got %v", ref, err)
		}
	}
}

func TestSave_PrunesOldArtifacts(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	var refs []string
	for i := 0; i < keepArtifacts+5; i++ {
		ref, err := s.Save([]byte(fmt.Sprintf("audio %d", i)))
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		refs = append(refs, ref)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != keepArtifacts {
		t.Fatalf("expected %d artifacts kept, found %d", keepArtifacts, len(entries))
	}
	// Oldest pruned, newest retrievable.
	if _, err := s.Read(refs[0]); !os.IsNotExist(err) {
		t.Fatalf("expected oldest artifact pruned, got %v", err)
	}
	if _, err := s.Read(refs[len(refs)-1]); err != nil {
		t.Fatalf("expected newest artifact readable, got %v", err)
	}
}
