package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calvinalkan/iw/internal/fs"
)

// DefaultLockTimeout bounds how long a write waits for another writer.
const DefaultLockTimeout = 2 * time.Second

const (
	filePerms = 0o644
	dirPerms  = 0o750
)

// Options configures a [Store]. Zero fields get defaults.
type Options struct {
	Locker      *fs.Locker
	LockTimeout time.Duration
	Dates       DateResolver
	Notifier    Notifier
}

// Store runs queue operations against backing documents.
//
// Every operation reloads the document, so rows edited by hand between two
// calls are picked up. Mutating operations hold an advisory lock on
// <dir>/.locks/<name>.lock for the whole read-modify-write.
type Store struct {
	fs          fs.FS
	locker      *fs.Locker
	lockTimeout time.Duration
	dates       DateResolver
	notify      Notifier
}

// NewStore returns a store reading and writing documents through fsys.
func NewStore(fsys fs.FS, opts Options) *Store {
	s := &Store{
		fs:          fsys,
		locker:      opts.Locker,
		lockTimeout: opts.LockTimeout,
		dates:       opts.Dates,
		notify:      opts.Notifier,
	}

	if s.locker == nil {
		s.locker = fs.NewLocker(fsys)
	}

	if s.lockTimeout <= 0 {
		s.lockTimeout = DefaultLockTimeout
	}

	if s.dates == nil {
		s.dates = ISODates
	}

	if s.notify == nil {
		s.notify = discardNotifier{}
	}

	return s
}

// ResolveDate resolves text through the configured date resolver. Failures
// are returned as a [*ValidationError].
func (s *Store) ResolveDate(text string, today Date) (Date, error) {
	d, err := s.dates.Resolve(text, today)
	if err != nil || d.IsZero() {
		reason := "could not be resolved"
		if err != nil {
			reason = err.Error()
		}

		return Date{}, &ValidationError{Field: "next repetition date", Reason: reason}
	}

	return d, nil
}

// Create writes an empty queue document at q.Path, creating parent
// directories. Returns [ErrQueueExists] if the document is already there.
func (s *Store) Create(ctx context.Context, q Queue) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := s.fs.MkdirAll(filepath.Dir(q.Path), dirPerms)
	if err != nil {
		return nil, &IOError{Op: OpSave, Path: q.Path, Err: err}
	}

	lock, err := s.lock(q)
	if err != nil {
		return nil, err
	}
	defer lock.Close()

	exists, err := s.fs.Exists(q.Path)
	if err != nil {
		return nil, &IOError{Op: OpLoad, Path: q.Path, Err: err}
	}

	if exists {
		return nil, fmt.Errorf("%w: %s", ErrQueueExists, q.Path)
	}

	t := NewTable(q, nil)

	err = s.save(t)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Load reads and decodes q. Rows are returned in queue order. Rows that
// could not be decoded are reported to the notifier and kept in
// [Table.Warnings].
func (s *Store) Load(ctx context.Context, q Queue) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.load(q)
}

// Save writes t back to its document.
//
// Save fails with [ErrConflict] when the document changed since t was
// loaded, and with an [*IOError] when the write fails. In both cases t is
// left as it was, so the caller can retry.
func (s *Store) Save(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, err := s.lock(t.Queue)
	if err != nil {
		return err
	}
	defer lock.Close()

	onDisk, err := s.diskVersion(t.Queue)
	if err != nil {
		return err
	}

	if onDisk != t.Version {
		return fmt.Errorf("%w: %s", ErrConflict, t.Queue.Path)
	}

	return s.save(t)
}

// Update loads q, applies fn, and saves the result, all under the queue's
// lock. When fn fails nothing is written and fn's error is returned. The
// table is returned whenever it was loaded, including after a failed save.
func (s *Store) Update(ctx context.Context, q Queue, fn func(t *Table) error) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock, err := s.lock(q)
	if err != nil {
		return nil, err
	}
	defer lock.Close()

	t, err := s.load(q)
	if err != nil {
		return nil, err
	}

	err = fn(t)
	if err != nil {
		return t, err
	}

	err = s.save(t)
	if err != nil {
		return t, err
	}

	return t, nil
}

// Add validates in and appends it to q.
func (s *Store) Add(ctx context.Context, q Queue, in RowInput) (Row, *Table, error) {
	row, err := NewRow(in)
	if err != nil {
		return Row{}, nil, err
	}

	t, err := s.Update(ctx, q, func(t *Table) error {
		t.Add(row)

		return nil
	})

	return row, t, err
}

// AddMultiple validates every input and appends them to q in order. Nothing
// is written if any input is invalid.
func (s *Store) AddMultiple(ctx context.Context, q Queue, ins []RowInput) ([]Row, *Table, error) {
	rows := make([]Row, 0, len(ins))

	for i, in := range ins {
		row, err := NewRow(in)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		rows = append(rows, row)
	}

	t, err := s.Update(ctx, q, func(t *Table) error {
		t.AddMultiple(rows)

		return nil
	})

	return rows, t, err
}

// CurrentRep loads q and returns its current repetition. ok is false when
// nothing is due.
func (s *Store) CurrentRep(ctx context.Context, q Queue, today Date) (row Row, ok bool, err error) {
	t, err := s.Load(ctx, q)
	if err != nil {
		return Row{}, false, err
	}

	row, ok = t.Current(today)

	return row, ok, nil
}

// HasReps loads q and reports whether anything is due.
func (s *Store) HasReps(ctx context.Context, q Queue, today Date) (bool, error) {
	t, err := s.Load(ctx, q)
	if err != nil {
		return false, err
	}

	return t.HasReps(today), nil
}

// Entry is one row as listed by [Store.List].
type Entry struct {
	Pos   int
	Row   Row
	State State
}

// List loads q and returns its due rows in review order. With all set, the
// scheduled rows follow, also in queue order.
func (s *Store) List(ctx context.Context, q Queue, today Date, all bool) ([]Entry, *Table, error) {
	t, err := s.Load(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	var entries []Entry

	for pos, row := range DueRows(t.Rows, today) {
		entries = append(entries, Entry{Pos: pos, Row: row, State: t.StateOf(pos, today)})
	}

	if all {
		for _, pos := range Upcoming(t.Rows, today, 0) {
			entries = append(entries, Entry{Pos: pos, Row: t.Rows[pos], State: StateScheduled})
		}
	}

	return entries, t, nil
}

// RescheduleInput asks [Store.Advance] to put the current repetition back.
// Date is resolved through the store's date resolver.
type RescheduleInput struct {
	Date     string
	Priority *int
}

// Advance consumes the current repetition of q and returns it as it was.
//
// With next == nil the row is removed. Otherwise it is re-added with its
// repetition count incremented and the resolved date. An unresolvable date
// is a [*ValidationError] and nothing changes. When nothing is due the
// notifier is told and [ErrNoRepetitions] is returned without writing.
func (s *Store) Advance(ctx context.Context, q Queue, today Date, next *RescheduleInput) (Row, *Table, error) {
	var resched *Reschedule

	if next != nil {
		d, err := s.ResolveDate(next.Date, today)
		if err != nil {
			return Row{}, nil, err
		}

		resched = &Reschedule{Next: d, Priority: next.Priority}
	}

	var prev Row

	t, err := s.Update(ctx, q, func(t *Table) error {
		var err error

		prev, err = t.Advance(today, resched)

		return err
	})

	return prev, t, s.noteEmpty(q, err)
}

// Dismiss removes the current repetition of q for good and returns it.
// When nothing is due the notifier is told and [ErrNoRepetitions] is
// returned without writing.
func (s *Store) Dismiss(ctx context.Context, q Queue, today Date) (Row, *Table, error) {
	var prev Row

	t, err := s.Update(ctx, q, func(t *Table) error {
		var err error

		prev, err = t.Dismiss(today)

		return err
	})

	return prev, t, s.noteEmpty(q, err)
}

// EditInput lists the fields [Store.EditCurrent] replaces. Nil fields and an
// empty Date are left alone.
type EditInput struct {
	Priority *int
	Notes    *string
	Date     string
}

// EditCurrent edits the current repetition of q in place and returns the
// edited row.
//
// Edits never fail as a whole: priority is clamped, and a date the resolver
// cannot handle is reported as a warning while the other fields still apply.
func (s *Store) EditCurrent(ctx context.Context, q Queue, today Date, in EditInput) (Row, *Table, error) {
	e := Edit{Priority: in.Priority, Notes: in.Notes}

	if in.Date != "" {
		d, err := s.ResolveDate(in.Date, today)
		if err != nil {
			s.notify.Notify(SeverityWarning, fmt.Sprintf("%s: keeping next repetition date: %v", q.Name(), err))
		} else {
			e.Next = &d
		}
	}

	var edited Row

	t, err := s.Update(ctx, q, func(t *Table) error {
		var err error

		edited, err = t.EditCurrent(today, e)

		return err
	})

	return edited, t, s.noteEmpty(q, err)
}

func (s *Store) noteEmpty(q Queue, err error) error {
	if errors.Is(err, ErrNoRepetitions) {
		s.notify.Notify(SeverityInfo, fmt.Sprintf("%s: no repetitions", q.Name()))
	}

	return err
}

func (s *Store) lock(q Queue) (*fs.Lock, error) {
	lock, err := s.locker.LockWithTimeout(fs.LockPath(q.Path), s.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock for %s: %w", q.Path, err)
	}

	return lock, nil
}

// load reads q without taking the lock.
func (s *Store) load(q Queue) (*Table, error) {
	data, err := s.fs.ReadFile(q.Path)
	if err != nil {
		return nil, &IOError{Op: OpLoad, Path: q.Path, Err: err}
	}

	doc := Decode(string(data))
	for _, w := range doc.Warnings {
		label := "ignored row"
		if errors.Is(w.Err, ErrPriorityClamped) {
			label = "row kept"
		}

		s.notify.Notify(SeverityWarning, fmt.Sprintf("%s: %s: %s", q.Name(), label, w))
	}

	rows := doc.Rows
	SortRows(rows)

	return &Table{
		Queue:    q,
		Rows:     rows,
		Version:  version(data),
		Warnings: doc.Warnings,
		doc:      doc,
	}, nil
}

// save writes t without taking the lock. The caller must hold it.
func (s *Store) save(t *Table) error {
	data := []byte(t.Encode())

	err := s.fs.WriteFileAtomic(t.Queue.Path, data, filePerms)
	if err != nil {
		return &IOError{Op: OpSave, Path: t.Queue.Path, Err: err}
	}

	t.Version = version(data)

	return nil
}

// diskVersion returns the version of q's document as it is now, or "" if
// it does not exist.
func (s *Store) diskVersion(q Queue) (string, error) {
	data, err := s.fs.ReadFile(q.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", &IOError{Op: OpLoad, Path: q.Path, Err: err}
	}

	return version(data), nil
}

func version(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
