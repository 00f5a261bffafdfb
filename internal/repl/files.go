package repl

import (
	"os"
	"path/filepath"

	"factotum-cli/internal/runtime"
)

// readInputFiles collects the regular files directly inside dir, keyed by
// base name. A missing directory yields an empty map.
func readInputFiles(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]byte{}, nil
		}
		return nil, err
	}
	files := map[string][]byte{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files[entry.Name()] = content
	}
	return files, nil
}

// saveOutputFiles writes downloaded session outputs into dir and returns the
// saved paths. Names are flattened to their base name so the agent cannot
// write outside dir.
func saveOutputFiles(dir string, files []runtime.OutputFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	saved := make([]string, 0, len(files))
	for _, f := range files {
		name := filepath.Base(f.Name)
		if name == "." || name == string(filepath.Separator) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return saved, err
		}
		saved = append(saved, path)
	}
	return saved, nil
}
