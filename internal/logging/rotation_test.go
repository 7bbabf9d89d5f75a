package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingWriter_NoRotationBelowLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	payload := []byte("a small entry\n")
	if _, err := rw.Write(payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if rw.CurrentSize() != int64(len(payload)) {
		t.Errorf("CurrentSize = %d, want %d", rw.CurrentSize(), len(payload))
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should exist below the size limit")
	}
}

func TestRotatingWriter_RotatesAtLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	// Two writes of just over half the limit force exactly one rotation.
	big := bytes.Repeat([]byte("x"), 600*1024)
	for i := 0; i < 2; i++ {
		if _, err := rw.Write(big); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	backup, err := os.Stat(path + ".1")
	if err != nil {
		t.Fatalf("expected backup after rotation: %v", err)
	}
	if backup.Size() != int64(len(big)) {
		t.Errorf("backup size = %d, want %d", backup.Size(), len(big))
	}
	if rw.CurrentSize() != int64(len(big)) {
		t.Errorf("active file size = %d, want %d", rw.CurrentSize(), len(big))
	}
}

func TestRotatingWriter_ShiftsAndDropsOldBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	// Each write overflows the limit, so every write after the first rotates.
	big := bytes.Repeat([]byte("y"), 1100*1024)
	for i := 0; i < 4; i++ {
		if _, err := rw.Write(big); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	for _, name := range []string{path + ".1", path + ".2"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("expected backup %s: %v", name, err)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond MaxBackups should be dropped")
	}
}

func TestRotatingWriter_ZeroLimitNeverRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 0, MaxBackups: 3})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	if _, err := rw.Write(bytes.Repeat([]byte("z"), 256*1024)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("rotation should be disabled when MaxSizeMB is 0")
	}
}

func TestRotatingWriter_CompressesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 1, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer rw.Close()

	// Two writes just over half the limit, so only the second rotates.
	big := bytes.Repeat([]byte("compressible "), 48*1024)
	if _, err := rw.Write(big); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := rw.Write(big); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	// Compression runs in a goroutine; poll briefly for the result.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path + ".1.gz"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("compressed backup never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("uncompressed backup should be removed after compression")
	}
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "routeflow.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("Write after Close should fail")
	}
}

func TestRotatingWriter_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeflow.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0644); err != nil {
		t.Fatalf("seeding log file: %v", err)
	}

	rw, err := NewRotatingWriter(path, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	if _, err := rw.Write([]byte("current run\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rw.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "previous run") || !strings.Contains(string(data), "current run") {
		t.Errorf("expected both runs in log file, got %q", data)
	}
}
