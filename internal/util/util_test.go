package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Errorf("DirExists(%q) = false for an existing directory", dir)
	}
	if DirExists(filepath.Join(dir, "nope")) {
		t.Error("DirExists = true for a missing path")
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if DirExists(file) {
		t.Error("DirExists = true for a regular file")
	}
	// Stat fails with ENOTDIR rather than ENOENT here; still just false.
	if DirExists(filepath.Join(file, "sub")) {
		t.Error("DirExists = true for a path under a regular file")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Errorf("FileExists(%q) = false for an existing file", file)
	}
	if FileExists(dir) {
		t.Error("FileExists = true for a directory")
	}
	if FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists = true for a missing path")
	}
}
