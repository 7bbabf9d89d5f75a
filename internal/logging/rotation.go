// Package logging provides structured logging for RouteFlow runs.
package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig controls size-based log rotation.
type RotationConfig struct {
	// MaxSizeMB is the file size that triggers rotation. 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep. 0 keeps none.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultRotationConfig returns the rotation settings used when the config
// file does not override them.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.WriteCloser that renames its file aside and
// reopens it whenever the size limit is reached. Rotated files are named
// {path}.1 (newest) through {path}.N, with an optional .gz suffix.
// Safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	path     string
	limit    int64 // bytes, 0 means never rotate
	backups  int
	compress bool

	f       *os.File
	written int64
}

// NewRotatingWriter opens path for appending, creating parent directories
// as needed.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:     path,
		limit:    int64(config.MaxSizeMB) << 20,
		backups:  config.MaxBackups,
		compress: config.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	rw.f = f
	rw.written = info.Size()
	return nil
}

// Write appends p, rotating first when the write would push the file past
// the size limit. A failed rotation is reported on stderr and the write
// proceeds against the current file so no log data is dropped.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.f == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if rw.limit > 0 && rw.written+int64(len(p)) > rw.limit {
		if err := rw.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
		}
	}

	n, err := rw.f.Write(p)
	rw.written += int64(n)
	return n, err
}

// rotate closes the current file, shifts existing backups up by one, moves
// the file to {path}.1, and reopens a fresh file. Caller holds the mutex.
func (rw *RotatingWriter) rotate() error {
	if err := rw.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := rw.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.f = nil

	rw.shiftBackups()

	first := rw.backupName(1)
	if err := os.Rename(rw.path, first); err != nil {
		// Keep logging to the old file rather than losing entries.
		if openErr := rw.open(); openErr != nil {
			return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if rw.compress {
		go compressBackup(first)
	}

	return rw.open()
}

// shiftBackups renames {path}.i to {path}.i+1 from oldest to newest,
// dropping whatever falls off the end. Rename errors are ignored; a missing
// backup slot is not worth failing a rotation over.
func (rw *RotatingWriter) shiftBackups() {
	if rw.backups <= 0 {
		os.Remove(rw.backupName(1))
		os.Remove(rw.backupName(1) + ".gz")
		return
	}
	os.Remove(rw.backupName(rw.backups))
	os.Remove(rw.backupName(rw.backups) + ".gz")
	for i := rw.backups - 1; i >= 1; i-- {
		from, to := rw.backupName(i), rw.backupName(i+1)
		if _, err := os.Stat(from + ".gz"); err == nil {
			os.Rename(from+".gz", to+".gz")
		} else if _, err := os.Stat(from); err == nil {
			os.Rename(from, to)
		}
	}
}

func (rw *RotatingWriter) backupName(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// compressBackup gzips path and removes the original. Runs detached from
// the rotation, so failures only leave the uncompressed backup behind.
func compressBackup(path string) {
	src, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot read backup for compression: %v\n", err)
		return
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create compressed backup: %v\n", err)
		return
	}

	gz := gzip.NewWriter(dst)
	_, copyErr := io.Copy(gz, src)
	closeErr := gz.Close()
	dst.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path + ".gz")
		fmt.Fprintf(os.Stderr, "warning: compressing backup failed: %v\n", errorsFirst(copyErr, closeErr))
		return
	}

	os.Remove(path)
}

func errorsFirst(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes buffered data to disk.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.f == nil {
		return nil
	}
	return rw.f.Sync()
}

// Close syncs and closes the underlying file. Subsequent writes fail.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.f == nil {
		return nil
	}
	if err := rw.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := rw.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.f = nil
	return nil
}

// CurrentSize returns the size in bytes of the active log file.
func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}
