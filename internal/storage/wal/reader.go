package wal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Replay calls fn for every record in file order and returns how many
// records were delivered. A missing log replays zero records. Replay stops
// at the first malformed line or the first error returned by fn.
func (l *Log) Replay(fn func(Record) error) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("wal: open: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	count := 0
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return count, fmt.Errorf("wal: read: %w", readErr)
		}

		if len(line) > 0 {
			lineNo++
			if !isBlank(line) {
				rec, err := decodeLine(line, lineNo)
				if err != nil {
					return count, err
				}
				if err := fn(rec); err != nil {
					return count, err
				}
				count++
			}
		}

		if readErr != nil {
			return count, nil
		}
	}
}

// ReadAll returns every record in file order.
func (l *Log) ReadAll() ([]Record, error) {
	var records []Record
	_, err := l.Replay(func(r Record) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func isBlank(line []byte) bool {
	for _, c := range line {
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return false
		}
	}
	return true
}
