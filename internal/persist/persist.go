// internal/persist/persist.go
//
// Load-or-default JSON documents on the local filesystem.
// Responsibilities:
//   - Load a document, falling back to a caller-supplied default when the
//     file is absent or malformed (never an error).
//   - Save a document as indented JSON, replacing the file via rename.
//
// Notes:
//   - Load reports where the value came from (file vs default) so callers
//     that care can tell the two apart.
//   - Save failures wrap ErrIO and are not retried.

package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/rs/zerolog/log"
)

// ErrIO wraps every failure to write a document.
var ErrIO = errors.New("persist: write failed")

// Source tells whether a loaded document came from storage or the default.
type Source int

const (
	SourceDefault Source = iota
	SourceStored
)

func (s Source) String() string {
	if s == SourceStored {
		return "stored"
	}
	return "default"
}

// Loaded is the result of Load: either the parsed document or the default.
type Loaded[T any] struct {
	Doc    T
	Source Source
}

// Load reads path as JSON into a T.
// Missing or malformed files yield def unchanged with SourceDefault.
func Load[T any](path string, def T) Loaded[T] {
	doc := def
	src := LoadInto(path, &doc)
	return Loaded[T]{Doc: doc, Source: src}
}

// LoadInto decodes the JSON file at path into dst, a non-nil pointer.
// dst is left untouched unless the whole file decodes cleanly.
func LoadInto(path string, dst any) Source {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("read document; using default")
		}
		return SourceDefault
	}
	if err := DecodeInto(data, dst, json.Unmarshal); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("malformed document; using default")
		return SourceDefault
	}
	return SourceStored
}

// DecodeInto unmarshals data into a fresh value of dst's element type and
// assigns it to *dst only on success, so a failed decode never leaves dst
// half-written.
func DecodeInto(data []byte, dst any, unmarshal func([]byte, any) error) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("persist: decode target must be a non-nil pointer, got %T", dst)
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// Save writes doc to path as 4-space indented JSON.
// The parent directory is created when missing.
func Save(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrIO, path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrIO, path, err)
	}
	log.Debug().Str("path", path).Msg("document saved")
	return nil
}
