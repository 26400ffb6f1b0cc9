// Package local stores run artifacts as plain files below one directory.
// Importing it registers the "local" provider with the storage package.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/storage"
)

var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Locator = (*Storage)(nil)
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

type Storage struct {
	root string
}

// NewStorage creates root if needed and makes it absolute.
func NewStorage(root string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return &Storage{root: abs}, nil
}

func (s *Storage) BasePath() string { return s.root }

// path cleans key as if it were rooted, so ".." cannot climb above root.
func (s *Storage) path(key string) string {
	return filepath.Join(s.root, filepath.Clean("/"+key))
}

func (s *Storage) LocalPath(key string) (string, error) { return s.path(key), nil }

// Upload writes to a hidden temp file beside the target and renames it
// into place, so a reader sees either the old or the new content.
func (s *Storage) Upload(_ context.Context, key string, r io.Reader) (err error) {
	dst := s.path(key)
	if err = os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("local storage: upload %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("local storage: upload %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("local storage: upload %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("local storage: upload %s: %w", key, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("local storage: upload %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local storage: %s not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("local storage: download %s: %w", key, err)
	}
	return f, nil
}

func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("local storage: stat %s: %w", key, err)
	}
}

// DeletePrefix refuses any prefix that resolves to the root itself.
func (s *Storage) DeletePrefix(_ context.Context, prefix string) error {
	target := s.path(prefix)
	if target == s.root {
		return errors.New("local storage: refusing to delete the storage root")
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("local storage: delete %s: %w", prefix, err)
	}
	return nil
}

func (s *Storage) List(_ context.Context, prefix string) ([]storage.Object, error) {
	objects := []storage.Object{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.Object{Key: key, Size: info.Size(), Modified: info.ModTime()})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local storage: list %q: %w", prefix, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
