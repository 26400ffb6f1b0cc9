package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/voicescribe/logger"
)

// ErrReleased is returned when a slot of a released scratch area is written.
var ErrReleased = errors.New("storage: scratch released")

// Scratch is a per-run staging directory. Every run gets its own id so
// concurrent runs never share artifact paths.
type Scratch struct {
	id    string
	store Storage
	log   *logger.Logger

	mu       sync.Mutex
	released bool
}

// NewScratch allocates a scratch area under a fresh random id.
func NewScratch(store Storage, log *logger.Logger) *Scratch {
	return NewScratchWithID(store, uuid.NewString(), log)
}

// NewScratchWithID allocates a scratch area under the given id, typically
// the id of the run that owns it.
func NewScratchWithID(store Storage, id string, log *logger.Logger) *Scratch {
	return &Scratch{
		id:    id,
		store: store,
		log:   log.WithComponent("storage").WithFields(map[string]interface{}{logger.FieldRunID: id}),
	}
}

// ID returns the scratch id, which is also its top-level directory name.
func (s *Scratch) ID() string { return s.id }

// Slot returns the named slot inside this scratch area.
func (s *Scratch) Slot(name string) *Slot {
	return &Slot{scratch: s, name: path.Base(name)}
}

// Release deletes everything written to the scratch area. Calling it more
// than once is a no-op.
func (s *Scratch) Release(ctx context.Context) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()

	if err := s.store.DeletePrefix(ctx, s.id); err != nil {
		s.log.Warn("failed to release scratch", logger.ErrorFields("release", err))
		return fmt.Errorf("storage: release scratch %s: %w", s.id, err)
	}
	s.log.Debug("scratch released")
	return nil
}

func (s *Scratch) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Slot is a named location inside a Scratch. Saving overwrites whatever
// the slot held before.
type Slot struct {
	scratch *Scratch
	name    string
}

// Name returns the slot's file name.
func (s *Slot) Name() string { return s.name }

// Key returns the backend key of the slot.
func (s *Slot) Key() string { return s.scratch.id + "/" + s.name }

// Save writes data to the slot and returns the slot's local path when the
// backend has one, otherwise its key.
func (s *Slot) Save(ctx context.Context, data []byte) (string, error) {
	if s.scratch.isReleased() {
		return "", ErrReleased
	}
	if err := s.scratch.store.Upload(ctx, s.Key(), bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("storage: save slot %s: %w", s.Key(), err)
	}
	s.scratch.log.Debug("slot saved", map[string]interface{}{
		"slot":  s.name,
		"bytes": len(data),
	})
	if p, err := s.Path(); err == nil {
		return p, nil
	}
	return s.Key(), nil
}

// Read returns the slot's content.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	rc, err := s.scratch.store.Download(ctx, s.Key())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Exists reports whether the slot holds content.
func (s *Slot) Exists(ctx context.Context) (bool, error) {
	return s.scratch.store.Exists(ctx, s.Key())
}

// Path returns the slot's location on the local filesystem.
func (s *Slot) Path() (string, error) {
	loc, ok := s.scratch.store.(Locator)
	if !ok {
		return "", fmt.Errorf("storage: backend %T has no local paths", s.scratch.store)
	}
	return loc.LocalPath(s.Key())
}

// Sweep deletes run directories left behind by a previous process. Only
// top-level directories named by a UUID are touched. Failures are logged
// and skipped; the number of removed directories is returned.
func Sweep(ctx context.Context, store Storage, log *logger.Logger) int {
	l := log.WithComponent("storage")

	files, err := store.List(ctx, "")
	if err != nil {
		l.Warn("scratch sweep skipped", logger.ErrorFields("list", err))
		return 0
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		dir, _, found := strings.Cut(f.Key, "/")
		if !found {
			continue
		}
		if _, err := uuid.Parse(dir); err != nil {
			continue
		}
		seen[dir] = struct{}{}
	}

	removed := 0
	for dir := range seen {
		if err := store.DeletePrefix(ctx, dir); err != nil {
			l.Warn("failed to sweep scratch", logger.MergeWithError(map[string]interface{}{
				logger.FieldRunID: dir,
			}, err))
			continue
		}
		removed++
	}
	if removed > 0 {
		l.Info("swept stale scratch directories", map[string]interface{}{"count": removed})
	}
	return removed
}
