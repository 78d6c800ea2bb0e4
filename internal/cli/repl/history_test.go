package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_AddGet(t *testing.T) {
	h := NewHistory("", 3)
	for _, cmd := range []string{"a", "b", "b", "c", "d"} {
		h.Add(cmd)
	}

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v", got)
	}
	if h.Get(0) != "d" || h.Get(2) != "b" || h.Get(3) != "" || h.Get(-1) != "" {
		t.Errorf("Get() returned unexpected entries")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file, 0)
	h.Add("set a 1")
	h.Add("get a")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewHistory(file, 0)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), h.Entries()) {
		t.Errorf("Load() = %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"), 0)
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d", h.Len())
	}

	mem := NewHistory("", 0)
	mem.Add("x")
	if err := mem.Save(); err != nil || mem.Load() != nil {
		t.Error("in-memory history should not touch disk")
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	if filepath.Base(DefaultHistoryFile()) != ".nbdb_history" {
		t.Errorf("DefaultHistoryFile() = %q", DefaultHistoryFile())
	}
}
