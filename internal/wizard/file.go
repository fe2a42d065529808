package wizard

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a logo selection: a name plus a way to read its bytes at submit time.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a logo on disk, addressed by path.
type LocalFile string

func (p LocalFile) Name() string { return filepath.Base(string(p)) }

func (p LocalFile) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

// MemoryFile is an in-memory logo.
type MemoryFile struct {
	Filename string
	Data     []byte
}

func (m MemoryFile) Name() string { return m.Filename }

func (m MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.Data)), nil
}
