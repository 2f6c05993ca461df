// Package assets holds the embedded game page.
package assets

import (
	"embed"
)

//go:embed index.html
var FS embed.FS

// Page returns the game page served at "/".
func Page() []byte {
	b, err := FS.ReadFile("index.html")
	if err != nil {
		return []byte("<!doctype html><title>Number Guessing Game</title><p>page missing</p>")
	}
	return b
}
