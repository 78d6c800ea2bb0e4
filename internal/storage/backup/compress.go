package backup

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the body compression.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionZstd   Compression = "zstd"
	CompressionSnappy Compression = "snappy"
	CompressionLZ4    Compression = "lz4"
)

// Compressions lists every supported compression.
var Compressions = []Compression{CompressionNone, CompressionZstd, CompressionSnappy, CompressionLZ4}

// ParseCompression parses a compression name. An empty name means zstd.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompressionZstd, nil
	case CompressionNone, CompressionZstd, CompressionSnappy, CompressionLZ4:
		return c, nil
	default:
		return "", fmt.Errorf("backup: unknown compression %q", s)
	}
}

func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionSnappy:
		return snappy.Encode(nil, data), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("backup: unknown compression %q", c)
	}
}

func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case CompressionSnappy:
		return snappy.Decode(nil, data)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("backup: unknown compression %q", c)
	}
}
