package store

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendGdata  = "gdata"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend      string // file | sqlite | gdata | memory
	DataDir      string // file backend directory
	SQLitePath   string // sqlite database file
	GdataAppName string // gdata application name
}

// Open returns the configured backend.
func Open(opts Options) (Documents, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFile(opts.DataDir), nil
	case BackendSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendGdata:
		g, err := OpenGdata(opts.GdataAppName)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}

// OpenOrMemory is Open with a degraded mode: when the backend cannot be
// opened the game still runs on an in-memory store, and nothing persists.
func OpenOrMemory(opts Options) Documents {
	docs, err := Open(opts)
	if err != nil {
		log.Warn().Err(err).Str("backend", opts.Backend).Msg("store unavailable; using memory (nothing will persist)")
		return NewMemory()
	}
	return docs
}
