// Package jsonfile persists state as whole-file JSON objects: load the
// entire file, mutate in memory, rewrite atomically (write temp + rename).
// A per-store mutex serializes writers in-process; cross-process writers
// are last-writer-wins, which matches the single-admin operating
// assumption this bot runs under.
package jsonfile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// loadFile decodes path into out. A missing file is not an error; the
// map stays empty.
func loadFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

// saveFile writes v to path atomically: marshal, write a sibling temp
// file, then rename over the target so readers never observe a torn file.
func saveFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
