package storage

import (
	"fmt"
	"sort"
	"sync"
)

// InMemory implements Store, meant to be used in unit tests in other packages.
type InMemory struct {
	sync.Mutex
	m map[Key]Value
}

var _ Enumerable = (*InMemory)(nil)

func (s *InMemory) Get(k Key) (Value, error) {
	s.Lock()
	defer s.Unlock()
	if s.m == nil {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	v, ok := s.m[k]
	if !ok {
		return nil, fmt.Errorf("%q: %w", k, ErrNotFound)
	}
	return v, nil
}

func (s *InMemory) Put(k Key, v Value) error {
	if err := k.Check(); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if s.m == nil {
		s.m = make(map[Key]Value)
	}
	s.m[k] = append(Value(nil), v...)
	return nil
}

func (s *InMemory) Delete(k Key) error {
	s.Lock()
	defer s.Unlock()
	delete(s.m, k)
	return nil
}

// ForEach visits keys in lexical order.
func (s *InMemory) ForEach(cb func(Key) error) error {
	s.Lock()
	keys := make([]Key, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	s.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}
