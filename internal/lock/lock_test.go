package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	tmpDir := t.TempDir()

	l, err := Acquire(tmpDir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "LOCK"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if parsePID(string(data)) != os.Getpid() {
		t.Errorf("lock file pid = %d, want %d", parsePID(string(data)), os.Getpid())
	}

	if err := l.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "LOCK")); !os.IsNotExist(err) {
		t.Error("lock file left behind after Release")
	}
}

func TestDoubleAcquireFails(t *testing.T) {
	tmpDir := t.TempDir()

	l1, err := Acquire(tmpDir)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(tmpDir)
	if err == nil {
		t.Fatal("second Acquire() should fail")
	}

	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected HeldError, got %T: %v", err, err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("HeldError.PID = %d, want %d", held.PID, os.Getpid())
	}
}

func TestHolder(t *testing.T) {
	tmpDir := t.TempDir()

	if _, ok := Holder(tmpDir); ok {
		t.Error("Holder() reported a holder for an empty dir")
	}

	l, err := Acquire(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	pid, ok := Holder(tmpDir)
	if !ok || pid != os.Getpid() {
		t.Errorf("Holder() = %d, %v; want %d, true", pid, ok, os.Getpid())
	}

	_ = l.Release()
	if _, ok := Holder(tmpDir); ok {
		t.Error("Holder() reported a holder after release")
	}
}

func TestHolderStaleFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "LOCK"), []byte("pid=99999\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := Holder(tmpDir); ok {
		t.Error("Holder() trusted a stale lock file")
	}
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	l, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
