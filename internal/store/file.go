package store

import (
	"context"
	"path/filepath"

	"github.com/robalobadob/numberguess/internal/persist"
)

// fileStore keeps each document as a JSON file in dir.
type fileStore struct {
	dir string
}

// NewFile returns a Documents backed by JSON files in dir.
// The directory is created on first save.
func NewFile(dir string) Documents {
	if dir == "" {
		dir = "."
	}
	return &fileStore{dir: dir}
}

func (f *fileStore) path(name Name) string { return filepath.Join(f.dir, name.fileName()) }

func (f *fileStore) Load(ctx context.Context, name Name, dst any) (persist.Source, error) {
	if err := name.check(); err != nil {
		return persist.SourceDefault, err
	}
	return persist.LoadInto(f.path(name), dst), nil
}

func (f *fileStore) Save(ctx context.Context, name Name, v any) error {
	if err := name.check(); err != nil {
		return err
	}
	return persist.Save(f.path(name), v)
}

func (f *fileStore) Close() error { return nil }
