package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "exports", "2024")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.csv")

	err := OpenFileInManager(nonExistentFile)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "file does not exist:") {
		t.Errorf("Error message should contain 'file does not exist:', got: %v", err)
	}
}

func TestOpenFileWithDefaultApp_Directory(t *testing.T) {
	err := OpenFileWithDefaultApp(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("Expected directory error, got: %v", err)
	}
}

func TestOpenFileWithDefaultApp_EmptyPath(t *testing.T) {
	if err := OpenFileWithDefaultApp("  "); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Expected ErrEmptyPath, got: %v", err)
	}
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"receipt", ".pdf", "receipt.pdf"},
		{"receipt.pdf", ".pdf", "receipt.pdf"},
		{"RECEIPT.PDF", ".pdf", "RECEIPT.PDF"},
		{"stock.xlsx", ".csv", "stock.xlsx.csv"},
		{"dir.v2/stock", ".csv", "dir.v2/stock.csv"},
		{"", ".csv", ""},
	}

	for _, tt := range tests {
		if got := EnsureExtension(tt.path, tt.ext); got != tt.want {
			t.Errorf("EnsureExtension(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"O-1", "O-1"},
		{"2024/05 report", "2024_05 report"},
		{" a:b ", "a_b"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		if got := SafeFileName(tt.in); got != tt.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
