package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/nicolagi/goldendiff/internal/config"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNotImplemented = errors.New("not implemented")
	ErrInvalidKey     = errors.New("invalid key")
)

// Key names an archived report. It is a slash-separated relative path,
// e.g., "6f1c.../parser/expressions.diff".
type Key string

// Check rejects empty keys, absolute keys and keys escaping the store.
func (k Key) Check() error {
	s := string(k)
	if s == "" || strings.HasPrefix(s, "/") || path.Clean(s) != s || s == "." || s == ".." || strings.HasPrefix(s, "../") {
		return fmt.Errorf("%q: %w", s, ErrInvalidKey)
	}
	return nil
}

type Value []byte

type Store interface {
	Get(Key) (Value, error)
	Put(Key, Value) error
	Delete(Key) error
}

// Enumerable stores can list their keys.
type Enumerable interface {
	Store
	ForEach(func(Key) error) error
}

func NewStore(c *config.C) (Store, error) {
	switch c.ReportStore {
	case config.StoreDisk:
		return NewDiskStore(c.ReportStoreDir), nil
	case config.StoreNull, "":
		return NullStore{}, nil
	case config.StoreS3:
		return newS3Store(c)
	default:
		return nil, fmt.Errorf("%q: %w", c.ReportStore, ErrNotImplemented)
	}
}
