package store

import (
	"path/filepath"

	"github.com/mrz1836/dcrvault/internal/fileutil"
)

// filePerm is the mode of stored blobs; they contain mnemonics.
const filePerm = 0o600

// FileBackend keeps one file per key in a directory. Writes are atomic.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created
// on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get implements Backend.
func (f *FileBackend) Get(key string) ([]byte, bool, error) {
	return fileutil.ReadIfExists(f.Path(key))
}

// Put implements Backend.
func (f *FileBackend) Put(key string, data []byte) error {
	return fileutil.WriteAtomic(f.Path(key), data, filePerm)
}

// Close implements Backend.
func (f *FileBackend) Close() error { return nil }
