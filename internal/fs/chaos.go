package fs

import (
	"errors"
	iofs "io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate  float64 // Fail ReadFile entirely
	WriteFailRate float64 // Fail WriteFileAtomic entirely
	OpenFailRate  float64 // Fail OpenFile
	StatFailRate  float64 // Fail Stat/Exists
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects failures for testing.
//
// Injected errors are real OS errors (syscall.Errno wrapped in
// *fs.PathError), so os.IsNotExist and errors.Is behave as they would for
// real failures. Use [IsInjected] to tell them apart in tests.
//
// A new Chaos starts in [ChaosModePassthrough]; call [Chaos.SetMode] to
// start injecting.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu  sync.Mutex
	rng *rand.Rand

	readFails  atomic.Int64
	writeFails atomic.Int64
	openFails  atomic.Int64
	statFails  atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping fs.
// The seed controls random fault injection for reproducibility.
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	return &Chaos{
		fs:     fs,
		rng:    rand.New(rand.NewSource(seed)),
		config: config,
	}
}

// SetMode updates Chaos behavior. Safe to call concurrently with filesystem
// operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails  int64
	WriteFails int64
	OpenFails  int64
	StatFails  int64
}

// Stats returns the number of faults injected so far.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:  c.readFails.Load(),
		WriteFails: c.writeFails.Load(),
		OpenFails:  c.openFails.Load(),
		StatFails:  c.statFails.Load(),
	}
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if c.should(c.config.OpenFailRate) {
		c.openFails.Add(1)

		return nil, injectedPathError("open", path, c.pick(syscall.EACCES, syscall.EMFILE, syscall.EIO))
	}

	return c.fs.OpenFile(path, flag, perm)
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		c.readFails.Add(1)

		return nil, injectedPathError("read", path, c.pick(syscall.EIO, syscall.EACCES))
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.should(c.config.WriteFailRate) {
		c.writeFails.Add(1)

		return injectedPathError("write", path, c.pick(syscall.EIO, syscall.ENOSPC, syscall.EROFS))
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	return c.fs.ReadDir(path)
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	return c.fs.MkdirAll(path, perm)
}

func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return nil, injectedPathError("stat", path, syscall.EIO)
	}

	return c.fs.Stat(path)
}

func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return false, injectedPathError("stat", path, syscall.EIO)
	}

	return c.fs.Exists(path)
}

func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeInject || rate <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) pick(errs ...syscall.Errno) syscall.Errno {
	c.mu.Lock()
	defer c.mu.Unlock()

	return errs[c.rng.Intn(len(errs))]
}

// injectedPathErrors tracks the *PathError values created by Chaos so that
// IsInjected can recognize them while they still look like plain OS errors.
var injectedPathErrors sync.Map // map[*iofs.PathError]struct{}

func injectedPathError(op, path string, errno syscall.Errno) error {
	err := &iofs.PathError{Op: op, Path: path, Err: errno}
	injectedPathErrors.Store(err, struct{}{})

	return err
}

// IsInjected reports whether err (or any error it wraps) was injected by
// [Chaos]. Returns false if err is nil.
func IsInjected(err error) bool {
	var pathErr *iofs.PathError
	if !errors.As(err, &pathErr) {
		return false
	}

	_, ok := injectedPathErrors.Load(pathErr)

	return ok
}
