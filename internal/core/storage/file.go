package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// File is a Scoped store persisted as one JSON object per scope under a
// data directory (global.json, workspace.json).
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir. The directory is
// created on first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Get returns the stored value or def when the key or file is absent.
// Unreadable or corrupt files are treated as absent and logged.
func (f *File) Get(key string, scope Scope, def string) string {
	bucket, err := f.load(scope)
	if err != nil {
		log.Warn().Err(err).Str("scope", scope.String()).Msg("read scoped storage")
		return def
	}
	if v, ok := bucket[key]; ok {
		return v
	}
	return def
}

// Store writes a value and flushes the scope's file atomically.
func (f *File) Store(key, value string, scope Scope) error {
	bucket, err := f.load(scope)
	if err != nil {
		// Corrupt bucket: start over rather than fail every write.
		log.Warn().Err(err).Str("scope", scope.String()).Msg("reset corrupt scoped storage")
		bucket = map[string]string{}
	}
	bucket[key] = value
	return f.save(scope, bucket)
}

func (f *File) path(scope Scope) string {
	return filepath.Join(f.dir, scope.String()+".json")
}

func (f *File) load(scope Scope) (map[string]string, error) {
	data, err := os.ReadFile(f.path(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var bucket map[string]string
	if err := json.Unmarshal(data, &bucket); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path(scope), err)
	}
	if bucket == nil {
		bucket = map[string]string{}
	}
	return bucket, nil
}

func (f *File) save(scope Scope, bucket map[string]string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return err
	}

	path := f.path(scope)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
