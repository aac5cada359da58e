package fs

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package except [Real.Exists],
// which wraps [os.Stat], and [Real.WriteFileAtomic], which uses atomic file
// writes.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.OpenFile].
func (*Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

// A passthrough wrapper for [os.ReadFile].
func (*Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// over path. An existing file keeps its permissions; perm applies to new
// files.
func (*Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	err := atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	if isNew {
		return os.Chmod(path, perm)
	}

	return nil
}

// A passthrough wrapper for [os.ReadDir].
func (*Real) ReadDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// A passthrough wrapper for [os.MkdirAll].
func (*Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (*Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
func (*Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}
