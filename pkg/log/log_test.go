package log

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWriteRetrieve(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	if err := Init(dbPath, true); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Printf("first entry %d", 1)
	Debugf("second entry %d", 2)

	entries, err := GetLastNLogs(10)
	if err != nil {
		t.Fatalf("GetLastNLogs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if !strings.Contains(entries[0], "first entry 1") {
		t.Errorf("Oldest entry mismatch: %s", entries[0])
	}
	if !strings.Contains(entries[1], "second entry 2") {
		t.Errorf("Newest entry mismatch: %s", entries[1])
	}
	if WritesSinceStart() < 2 {
		t.Errorf("Expected at least 2 writes recorded, got %d", WritesSinceStart())
	}
}

func TestGetLastNLogsBeforeInit(t *testing.T) {
	// Package state is global; this test only makes sense when Init has
	// not run in this process yet, so it guards the closed state instead.
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := GetLastNLogs(1); err != ErrNotInitialized {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}
