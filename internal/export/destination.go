package export

import (
	"io"
	"os"
	"path/filepath"
)

// Destination is where an export is written.
type Destination interface {
	Name() string
	// Open returns a writer positioned at the end of existing content when appending,
	// or on an empty file otherwise.
	Open(appending bool) (io.WriteCloser, error)
}

type FileDestination struct {
	Path string
}

func (d FileDestination) Name() string {
	return d.Path
}

func (d FileDestination) Open(appending bool) (io.WriteCloser, error) {
	if dir := filepath.Dir(d.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appending {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(d.Path, flags, 0o644)
}
