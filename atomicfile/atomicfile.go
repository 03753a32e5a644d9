// Package atomicfile writes files atomically, by writing to a temporary
// file in the target directory and renaming it into place on close. A
// killed process leaves a temporary file behind, never a truncated
// artifact under the final name.
package atomicfile

import (
	"os"
	"path/filepath"
)

// File is a write-only file that only appears under its final name after
// a successful Close.
type File struct {
	*os.File
	path string
}

// New creates a temporary file next to path.
func New(path string) (*File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".wip-")
	if err != nil {
		return nil, err
	}
	return &File{File: f, path: path}, nil
}

// Close flushes the file and moves it to its final name.
func (f *File) Close() error {
	if err := f.File.Sync(); err != nil {
		f.Abort()
		return err
	}
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	return os.Rename(f.File.Name(), f.path)
}

// Abort discards the temporary file.
func (f *File) Abort() error {
	f.File.Close()
	return os.Remove(f.File.Name())
}
