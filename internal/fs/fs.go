// Package fs provides the filesystem abstraction behind queue documents.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] and atomic writes
//   - [Chaos]: testing implementation that injects failures
//   - [Locker]: advisory flock-based locks for read-modify-write cycles
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("IW-Queues/IW-Queue.md")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("IW-Queues/IW-Queue.md", data, 0o644)
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
//
// This interface is satisfied by [os.File]. [File.Fd] must return a real OS
// file descriptor usable with flock until the file is closed.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// FS defines the filesystem operations used by the queue store, the config
// loader and the CLI.
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename so readers never observe a partial write.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name. See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface checks.
var (
	_ File = (*os.File)(nil)
	_ FS   = (*Real)(nil)
	_ FS   = (*Chaos)(nil)
)
