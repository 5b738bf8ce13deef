package assets

import (
	"embed"
	"io"
)

//go:embed targets.txt dictionary.txt
var FS embed.FS

// Targets opens the embedded ranked target list (most common first).
func Targets() (io.ReadCloser, error) {
	return FS.Open("targets.txt")
}

// Dictionary opens the embedded flat dictionary.
func Dictionary() (io.ReadCloser, error) {
	return FS.Open("dictionary.txt")
}
