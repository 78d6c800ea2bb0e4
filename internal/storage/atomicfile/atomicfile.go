// Package atomicfile replaces a file so that a crash at any point leaves a
// complete copy of either the old or the new content on disk.
//
// Protocol for Write(path, fn):
//
//  1. If path exists and path+".temp" does not, rename path to the temp name.
//     An existing temp file is already the last complete copy and is kept.
//  2. Create path, stream the new content into it via fn, fsync and close.
//  3. Remove the temp file and fsync the directory.
//
// If step 2 fails the temp file is left in place and the caller should
// treat it as the authoritative copy on the next load.
package atomicfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TempSuffix is appended to the target path to name the backup copy.
const TempSuffix = ".temp"

// TempPath returns the backup path used while path is being replaced.
func TempPath(path string) string { return path + TempSuffix }

// Write replaces the content of path with whatever fn writes.
func Write(path string, fn func(w io.Writer) error) error {
	temp := TempPath(path)

	targetExists, err := Exists(path)
	if err != nil {
		return fmt.Errorf("atomicfile: stat target: %w", err)
	}
	tempExists, err := Exists(temp)
	if err != nil {
		return fmt.Errorf("atomicfile: stat temp: %w", err)
	}

	if targetExists && !tempExists {
		if err := os.Rename(path, temp); err != nil {
			return fmt.Errorf("atomicfile: move target aside: %w", err)
		}
		tempExists = true
	}

	if err := writeSynced(path, fn); err != nil {
		if !tempExists {
			// Nothing older to fall back to; a torn file would only block the
			// next load.
			_ = os.Remove(path)
		}
		return err
	}

	if tempExists {
		if err := os.Remove(temp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("atomicfile: remove temp: %w", err)
		}
	}
	if err := syncDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("atomicfile: sync dir: %w", err)
	}
	return nil
}

// WriteFile replaces path with data.
func WriteFile(path string, data []byte) error {
	return Write(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Recoverable reports whether a temp copy of path is present.
func Recoverable(path string) (bool, error) {
	return Exists(TempPath(path))
}

func writeSynced(path string, fn func(w io.Writer) error) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("atomicfile: create target: %w", err)
	}

	bw := bufio.NewWriter(file)
	if err := fn(bw); err != nil {
		file.Close()
		return fmt.Errorf("atomicfile: write content: %w", err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("atomicfile: flush: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("atomicfile: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("atomicfile: close: %w", err)
	}
	return nil
}

// Exists reports whether path is present.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	// Some platforms refuse fsync on directories.
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}
	return nil
}
