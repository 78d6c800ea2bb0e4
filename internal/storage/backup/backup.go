package backup

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid/v2"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
	"github.com/PerchunPak/nonbloat-db/pkg/crypto/adaptive"
)

const (
	// Magic opens every archive.
	Magic = "NBDBBAK1"

	// FormatVersion is written into new headers.
	FormatVersion = 1

	maxHeaderSize = 1 << 20

	keyPurpose = "nbdb backup v1"
)

var (
	ErrInvalidMagic       = errors.New("backup: invalid magic bytes")
	ErrPassphraseRequired = errors.New("backup: archive is encrypted, passphrase required")
	ErrDecryptionFailed   = errors.New("backup: decryption failed - wrong passphrase or corrupted data")
	ErrChecksumMismatch   = errors.New("backup: checksum mismatch")
)

// Source is what Create archives.
type Source interface {
	Snapshot() *domain.Object
	Path() string
}

// Header describes an archive.
type Header struct {
	Version     int                 `json:"version" yaml:"version"`
	ID          string              `json:"id" yaml:"id"`
	CreatedAt   time.Time           `json:"created_at" yaml:"created_at"`
	Source      string              `json:"source,omitempty" yaml:"source,omitempty"`
	Keys        int                 `json:"keys" yaml:"keys"`
	PlainSize   int64               `json:"plain_size" yaml:"plain_size"`
	Compression Compression         `json:"compression" yaml:"compression"`
	Encrypted   bool                `json:"encrypted" yaml:"encrypted"`
	Cipher      adaptive.CipherType `json:"cipher,omitempty" yaml:"cipher,omitempty"`
	Salt        []byte              `json:"salt,omitempty" yaml:"-" table:"-"`
	KDF         *adaptive.KDFParams `json:"kdf,omitempty" yaml:"-" table:"-"`

	// Checksum is the hex xxhash64 of the plain snapshot bytes.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Options configures Create.
type Options struct {
	Compression Compression

	// Passphrase enables encryption when non-empty.
	Passphrase []byte
	Cipher     adaptive.CipherType
	KDF        adaptive.KDFParams

	// Now overrides the clock.
	Now func() time.Time
}

// Create writes an archive of src to w.
func Create(w io.Writer, src Source, opts Options) (*Header, error) {
	data := src.Snapshot()
	plain, err := codec.New(codec.NoIndent()).Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("backup: encode snapshot: %w", err)
	}

	if opts.Compression == "" {
		opts.Compression = CompressionZstd
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	createdAt := now().UTC()

	id, err := ulid.New(ulid.Timestamp(createdAt), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, fmt.Errorf("backup: generate id: %w", err)
	}

	hdr := &Header{
		Version:     FormatVersion,
		ID:          id.String(),
		CreatedAt:   createdAt,
		Source:      src.Path(),
		Keys:        data.Len(),
		PlainSize:   int64(len(plain)),
		Compression: opts.Compression,
		Checksum:    checksum(plain),
	}

	body, err := compress(opts.Compression, plain)
	if err != nil {
		return nil, fmt.Errorf("backup: compress: %w", err)
	}

	if len(opts.Passphrase) > 0 {
		salt, err := adaptive.NewSalt()
		if err != nil {
			return nil, err
		}
		kdf := opts.KDF
		if kdf == (adaptive.KDFParams{}) {
			kdf = adaptive.DefaultKDFParams()
		}
		cipherType := opts.Cipher
		if cipherType == adaptive.CipherAuto {
			cipherType = adaptive.Preferred()
		}

		c, err := adaptive.FromPassphrase(opts.Passphrase, salt, cipherType, kdf, keyPurpose)
		if err != nil {
			return nil, fmt.Errorf("backup: derive key: %w", err)
		}
		hdr.Encrypted = true
		hdr.Cipher = c.Type()
		hdr.Salt = salt
		hdr.KDF = &kdf

		body, err = c.Encrypt(body, additionalData(hdr))
		if err != nil {
			return nil, fmt.Errorf("backup: encrypt: %w", err)
		}
	}

	if err := writeHeader(w, hdr); err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("backup: write body: %w", err)
	}
	return hdr, nil
}

// Restore reads an archive and returns its mapping.
func Restore(r io.Reader, passphrase []byte) (*domain.Object, *Header, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, nil, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, hdr, fmt.Errorf("backup: read body: %w", err)
	}

	if hdr.Encrypted {
		if len(passphrase) == 0 {
			return nil, hdr, ErrPassphraseRequired
		}
		kdf := adaptive.DefaultKDFParams()
		if hdr.KDF != nil {
			kdf = *hdr.KDF
		}
		c, err := adaptive.FromPassphrase(passphrase, hdr.Salt, hdr.Cipher, kdf, keyPurpose)
		if err != nil {
			return nil, hdr, fmt.Errorf("backup: derive key: %w", err)
		}
		body, err = c.Decrypt(body, additionalData(hdr))
		if err != nil {
			return nil, hdr, ErrDecryptionFailed
		}
	}

	plain, err := decompress(hdr.Compression, body)
	if err != nil {
		return nil, hdr, fmt.Errorf("backup: decompress: %w", err)
	}
	if got := checksum(plain); got != hdr.Checksum {
		return nil, hdr, fmt.Errorf("%w: header %s, body %s", ErrChecksumMismatch, hdr.Checksum, got)
	}

	obj, err := codec.New(codec.NoIndent()).Unmarshal(plain)
	if err != nil {
		return nil, hdr, err
	}
	return obj, hdr, nil
}

// Inspect reads only the archive header.
func Inspect(r io.Reader) (*Header, error) {
	return readHeader(r)
}

func writeHeader(w io.Writer, hdr *Header) error {
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("backup: marshal header: %w", err)
	}

	buf := make([]byte, 0, len(Magic)+4+len(hdrJSON))
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(hdrJSON)))
	buf = append(buf, hdrJSON...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("backup: write header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (*Header, error) {
	var prefix [len(Magic) + 4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrInvalidMagic
		}
		return nil, fmt.Errorf("backup: read header: %w", err)
	}
	if !bytes.Equal(prefix[:len(Magic)], []byte(Magic)) {
		return nil, ErrInvalidMagic
	}

	size := binary.BigEndian.Uint32(prefix[len(Magic):])
	if size == 0 || size > maxHeaderSize {
		return nil, fmt.Errorf("backup: invalid header length %d", size)
	}
	hdrJSON := make([]byte, size)
	if _, err := io.ReadFull(r, hdrJSON); err != nil {
		return nil, fmt.Errorf("backup: read header: %w", err)
	}

	var hdr Header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, fmt.Errorf("backup: decode header: %w", err)
	}
	if hdr.Version != FormatVersion {
		return nil, fmt.Errorf("backup: unsupported format version %d", hdr.Version)
	}
	return &hdr, nil
}

func checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// additionalData binds the sealed body to its archive.
func additionalData(hdr *Header) []byte {
	return []byte(Magic + hdr.ID + hdr.Checksum)
}
