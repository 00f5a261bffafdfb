package repl

import (
	"os"
	"path/filepath"
	"testing"

	"factotum-cli/internal/runtime"
)

func TestReadInputFilesMissingDir(t *testing.T) {
	files, err := readInputFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected empty map, got %d entries", len(files))
	}
}

func TestReadInputFilesSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := readInputFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if string(files["notes.txt"]) != "hello" {
		t.Errorf("notes.txt = %q", files["notes.txt"])
	}
}

func TestSaveOutputFilesFlattensPaths(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	saved, err := saveOutputFiles(dir, []runtime.OutputFile{
		{Name: "report.md", Content: []byte("done")},
		{Name: "../escape/secret.txt", Content: []byte("x")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 saved paths, got %d: %v", len(saved), saved)
	}
	for _, path := range saved {
		if filepath.Dir(path) != dir {
			t.Errorf("path escaped output dir: %s", path)
		}
	}
	content, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "done" {
		t.Errorf("report.md = %q", content)
	}
}

func TestSaveOutputFilesEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	saved, err := saveOutputFiles(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != nil {
		t.Errorf("expected nil, got %v", saved)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Error("output dir should not be created for empty downloads")
	}
}
