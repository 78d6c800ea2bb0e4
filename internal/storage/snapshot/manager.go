package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/atomicfile"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

// ErrPathRequired is returned by NewManager when no path is configured.
var ErrPathRequired = errors.New("snapshot: path is required")

// Config configures the snapshot manager.
type Config struct {
	Path string

	// Indent selects the on-disk layout. Ignored when Codec is set.
	Indent codec.Indent

	// Codec overrides the JSON codec.
	Codec codec.Codec

	Logger *slog.Logger
}

// Manager reads and writes one snapshot file.
type Manager struct {
	cfg    Config
	codec  codec.Codec
	logger *slog.Logger
}

// NewManager creates a snapshot manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, ErrPathRequired
	}
	c := cfg.Codec
	if c == nil {
		c = codec.New(cfg.Indent)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:    cfg,
		codec:  c,
		logger: logger.With("component", "snapshot"),
	}, nil
}

// Info contains metadata about a loaded or saved snapshot.
type Info struct {
	// Path is the file the mapping came from or went to. Empty when Load
	// found nothing on disk.
	Path string `json:"path"`

	// Recovered is set when Load used the temp copy.
	Recovered bool `json:"recovered"`

	Keys int   `json:"keys"`
	Size int64 `json:"size"`
}

// Paths returns the snapshot path and its temp path.
func (m *Manager) Paths() (primary, temp string) {
	return m.cfg.Path, atomicfile.TempPath(m.cfg.Path)
}

// Load reads the most recent complete snapshot.
func (m *Manager) Load() (*domain.Object, *Info, error) {
	primary, temp := m.Paths()

	obj, info, err := m.loadFile(temp)
	if err == nil {
		info.Recovered = true
		m.logger.Warn("using possibly-stale recovered file",
			"path", temp,
			"keys", info.Keys)
		return obj, info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}

	obj, info, err = m.loadFile(primary)
	if err == nil {
		return obj, info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}

	return domain.NewObject(), &Info{}, nil
}

func (m *Manager) loadFile(path string) (*domain.Object, *Info, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: stat %s: %w", path, err)
	}

	obj, err := m.codec.Decode(file)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, nil, de.WithDetails(fmt.Sprintf("snapshot: %s: %s", path, de.Details))
		}
		return nil, nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}

	return obj, &Info{
		Path: path,
		Keys: obj.Len(),
		Size: stat.Size(),
	}, nil
}

// Save atomically replaces the snapshot with obj.
func (m *Manager) Save(obj *domain.Object) (*Info, error) {
	var written int64
	err := atomicfile.Write(m.cfg.Path, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		err := m.codec.Encode(cw, obj)
		written = cw.n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: save %s: %w", m.cfg.Path, err)
	}

	return &Info{
		Path: m.cfg.Path,
		Keys: obj.Len(),
		Size: written,
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
