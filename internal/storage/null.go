package storage

// NullStore discards reports.
type NullStore struct{}

var _ Enumerable = NullStore{}

func (NullStore) Get(Key) (Value, error) {
	return nil, ErrNotFound
}

func (NullStore) Put(Key, Value) error {
	return nil
}

func (NullStore) Delete(Key) error {
	return nil
}

func (NullStore) ForEach(func(Key) error) error {
	return nil
}
