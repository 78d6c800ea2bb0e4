package snapshot

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

type failingCodec struct {
	codec.Codec
	err error
}

func (f failingCodec) Encode(w io.Writer, m *domain.Object) error {
	_, _ = w.Write([]byte(`{"half": `))
	return f.err
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "db")
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func sampleObject() *domain.Object {
	obj := domain.NewObject()
	obj.Set("a", domain.String("b"))
	obj.Set("n", domain.Int(42))
	return obj
}

func TestNewManager_RequiresPath(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrPathRequired) {
		t.Fatalf("NewManager err = %v, want ErrPathRequired", err)
	}
}

func TestManager_LoadEmpty(t *testing.T) {
	m := newTestManager(t, Config{})

	obj, info, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if obj.Len() != 0 {
		t.Fatalf("Len = %d, want 0", obj.Len())
	}
	if info.Path != "" || info.Recovered {
		t.Fatalf("info = %+v, want empty", info)
	}
}

func TestManager_SaveLoad(t *testing.T) {
	m := newTestManager(t, Config{Indent: codec.Spaces(2)})

	saved, err := m.Save(sampleObject())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	primary, temp := m.Paths()
	if saved.Path != primary || saved.Keys != 2 {
		t.Fatalf("Save info = %+v", saved)
	}

	data, err := os.ReadFile(primary)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if want := "{\n  \"a\": \"b\",\n  \"n\": 42\n}"; string(data) != want {
		t.Fatalf("snapshot = %q, want %q", data, want)
	}
	if saved.Size != int64(len(data)) {
		t.Fatalf("Size = %d, want %d", saved.Size, len(data))
	}
	if _, err := os.Stat(temp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp left behind: %v", err)
	}

	obj, info, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !obj.Equal(sampleObject()) {
		t.Fatalf("loaded mapping differs")
	}
	if info.Recovered || info.Keys != 2 {
		t.Fatalf("Load info = %+v", info)
	}
}

func TestManager_SaveFailureLeavesTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	good := newTestManager(t, Config{Path: path})
	if _, err := good.Save(sampleObject()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	boom := errors.New("encoder exploded")
	bad := newTestManager(t, Config{Path: path, Codec: failingCodec{Codec: codec.New(codec.NoIndent()), err: boom}})
	if _, err := bad.Save(domain.NewObject()); !errors.Is(err, boom) {
		t.Fatalf("Save err = %v, want %v", err, boom)
	}

	var logs bytes.Buffer
	reader := newTestManager(t, Config{
		Path:   path,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	obj, info, err := reader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !info.Recovered {
		t.Fatalf("Recovered = false, want true")
	}
	if _, temp := reader.Paths(); info.Path != temp {
		t.Fatalf("info.Path = %q, want temp", info.Path)
	}
	if !obj.Equal(sampleObject()) {
		t.Fatalf("recovered mapping differs")
	}
	if !strings.Contains(logs.String(), "using possibly-stale recovered file") {
		t.Fatalf("missing recovery warning, logs: %s", logs.String())
	}
}

func TestManager_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"a": `},
		{"not an object", `[1, 2]`},
		{"empty file", ``},
		{"trailing data", `{"a": 1} {"b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, Config{})
			primary, _ := m.Paths()
			if err := os.WriteFile(primary, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, _, err := m.Load()
			if !errors.Is(err, domain.ErrMalformedData) {
				t.Fatalf("Load err = %v, want ErrMalformedData", err)
			}
			if !strings.Contains(err.Error(), primary) {
				t.Fatalf("Load err = %v, want path in message", err)
			}
		})
	}
}

func TestManager_TempPreferredOverPrimary(t *testing.T) {
	m := newTestManager(t, Config{})
	primary, temp := m.Paths()

	if err := os.WriteFile(primary, []byte(`{"torn": `), 0o644); err != nil {
		t.Fatalf("WriteFile primary: %v", err)
	}
	if err := os.WriteFile(temp, []byte(`{"ok": true}`), 0o644); err != nil {
		t.Fatalf("WriteFile temp: %v", err)
	}

	obj, info, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !info.Recovered {
		t.Fatalf("Recovered = false")
	}
	if v, ok := obj.Get("ok"); !ok || !v.Equal(domain.Bool(true)) {
		t.Fatalf("ok = %v, %v", v.Interface(), ok)
	}
}
