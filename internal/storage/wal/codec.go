package wal

import (
	"bytes"
	"fmt"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

func encodeLine(r Record) ([]byte, error) {
	data, err := codec.EncodeRecord(r.Key, r.Value)
	if err != nil {
		return nil, fmt.Errorf("wal: encode record %q: %w", r.Key, err)
	}
	return append(data, '\n'), nil
}

// decodeLine parses one log line. lineNo is 1-based and only used in errors.
func decodeLine(line []byte, lineNo int) (Record, error) {
	key, v, err := codec.DecodeRecord(bytes.TrimRight(line, "\r\n"))
	if err != nil {
		return Record{}, domain.ErrMalformedData.
			WithDetails(fmt.Sprintf("wal: line %d", lineNo)).
			WithCause(err)
	}
	return Record{Key: key, Value: v}, nil
}
