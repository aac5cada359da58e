package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned by [Locker.LockWithTimeout] when the lock is
	// still held elsewhere once the timeout expires.
	ErrWouldBlock = errors.New("lock would block")

	// ErrInvalidTimeout is returned when a timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid lock timeout")

	// errInodeMismatch means the lock file was replaced between open and
	// flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

// LocksDirName is the directory, next to a locked document, holding its lock files.
const LocksDirName = ".locks"

// LockPath returns the lock file path guarding path: <dir>/.locks/<base>.lock.
//
// A separate, stable lock file is used because queue documents are replaced
// via rename on every save, and flock guards an inode, not a pathname.
func LockPath(path string) string {
	return filepath.Join(filepath.Dir(path), LocksDirName, filepath.Base(path)+".lock")
}

// Locker provides exclusive advisory locks using flock(2).
//
// flock is advisory: all cooperating processes must take the lock for it to
// have effect. Note that two descriptors in the same process also exclude
// each other, so a caller must not re-acquire a lock it already holds.
//
// Locker verifies that the descriptor it locked still refers to the file
// currently at the lock path (protecting the open→lock window against the
// lock file being deleted and recreated).
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that uses the given filesystem for file operations.
func NewLocker(fs FS) *Locker {
	return &Locker{
		fs:    fs,
		flock: unix.Flock,
	}
}

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Close releases the lock and closes the underlying file descriptor.
// Close is idempotent.
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	fd := int(lk.file.Fd())

	unlockErr := flockRetryEINTR(lk.flock, fd, unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// LockWithTimeout acquires an exclusive lock on path, retrying with
// exponential backoff (1ms to 25ms) until timeout expires.
//
// If the lock file or its parent directories do not exist, they are created.
// Returns an error satisfying errors.Is(err, ErrWouldBlock) on timeout and
// [ErrInvalidTimeout] if timeout <= 0.
func (l *Locker) LockWithTimeout(path string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be > 0", ErrInvalidTimeout)
	}

	return l.lockPolling(path, timeout)
}

const maxBackoff = 25 * time.Millisecond

func (l *Locker) lockPolling(path string, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	backoff := time.Millisecond

	for {
		file, err := l.openLockFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening lockfile: %w", err)
		}

		err = l.acquire(file, path)
		if err == nil {
			return &Lock{file: file, flock: l.flock}, nil
		}

		_ = file.Close()

		if !errors.Is(err, ErrWouldBlock) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: timed out after %s", ErrWouldBlock, timeout)
		}

		time.Sleep(min(backoff, remaining))

		backoff = min(backoff*2, maxBackoff)
	}
}

// acquire flocks file without blocking and verifies the inode still matches
// path. On failure the file is unlocked but NOT closed.
func (l *Locker) acquire(file File, path string) error {
	fd := int(file.Fd())

	err := flockRetryEINTR(l.flock, fd, unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return ErrWouldBlock
		}

		return fmt.Errorf("flock: %w", err)
	}

	match, err := l.inodeMatchesPath(path, file)
	if err != nil || !match {
		_ = flockRetryEINTR(l.flock, fd, unix.LOCK_UN)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("verifying inode match: %w", err)
		}

		return errInodeMismatch
	}

	return nil
}

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755
)

func (l *Locker) openLockFile(path string) (File, error) {
	f, err := l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	err = l.fs.MkdirAll(filepath.Dir(path), lockDirPerm)
	if err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, lockFilePerm)
}

func (l *Locker) inodeMatchesPath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	return os.SameFile(openInfo, pathInfo), nil
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the call.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
