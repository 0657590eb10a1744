package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const newSuffix = ".new"

// DiskStore keeps each report in a file named after its key, below dir.
type DiskStore struct {
	dir string
}

var _ Enumerable = (*DiskStore)(nil)

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Get(k Key) (Value, error) {
	if err := k.Check(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.pathFor(k))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	return b, errors.WithStack(err)
}

// Put writes to a temporary file first, so readers never see partial reports.
func (s *DiskStore) Put(k Key, v Value) error {
	if err := k.Check(); err != nil {
		return err
	}
	p := s.pathFor(k)
	pnew := p + newSuffix
	err := os.WriteFile(pnew, v, 0666)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.WithStack(err)
		}
		if err = os.MkdirAll(filepath.Dir(pnew), 0777); err != nil {
			return errors.WithStack(err)
		}
		err = os.WriteFile(pnew, v, 0666)
	}
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Rename(pnew, p))
}

// Delete succeeds for keys that are not there.
func (s *DiskStore) Delete(k Key) error {
	if err := k.Check(); err != nil {
		return err
	}
	err := os.Remove(s.pathFor(k))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not delete %v", k)
	}
	return nil
}

// ForEach visits keys in lexical order. A missing store directory holds no keys.
func (s *DiskStore) ForEach(cb func(Key) error) error {
	const method = "DiskStore.ForEach"
	var kk []Key
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, newSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		kk = append(kk, Key(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return errorf(method, "walking %q: %w", s.dir, err)
	}
	for _, k := range kk {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *DiskStore) pathFor(key Key) string {
	return filepath.Join(s.dir, filepath.FromSlash(string(key)))
}
