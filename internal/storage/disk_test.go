package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func TestDiskStore(t *testing.T) {
	t.Run("reports land in nested directories", func(t *testing.T) {
		dir := t.TempDir()
		store := NewDiskStore(dir)
		if err := store.Put("run/pkg/name.diff", Value("report")); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dir, "run", "pkg", "name.diff"))
		if err != nil {
			t.Fatal(err)
		}
		if got, want := string(b), "report"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if _, err := os.Stat(filepath.Join(dir, "run", "pkg", "name.diff"+newSuffix)); !os.IsNotExist(err) {
			t.Errorf("temporary file left behind: %v", err)
		}
	})
	t.Run("missing directory has no keys", func(t *testing.T) {
		store := NewDiskStore(filepath.Join(t.TempDir(), "nothing", "here"))
		err := store.ForEach(func(Key) error {
			return errors.New("no keys expected")
		})
		if err != nil {
			t.Error(err)
		}
	})
	t.Run("iterates over all keys, without repetition", func(t *testing.T) {
		store := NewDiskStore(t.TempDir())
		f := func(keylist []Key, value Value) bool {
			keys := make(map[Key]int)
			for _, key := range keylist {
				keys[key] = 1
			}
			for key := range keys {
				if err := store.Put(key, value); err != nil {
					t.Error(err)
					return false
				}
			}
			seen := make(map[Key]int)
			err := store.ForEach(func(key Key) error {
				seen[key]++
				return store.Delete(key)
			})
			if err != nil {
				t.Error(err)
				return false
			}
			if diff := cmp.Diff(keys, seen); diff != "" {
				t.Log(diff)
				return false
			}
			return true
		}
		if err := quick.Check(f, nil); err != nil {
			t.Error(err)
		}
	})
	t.Run("callback error stops iteration", func(t *testing.T) {
		store := NewDiskStore(t.TempDir())
		for _, k := range []Key{"a/1.diff", "a/2.diff"} {
			if err := store.Put(k, nil); err != nil {
				t.Fatal(err)
			}
		}
		stop := errors.New("stop")
		calls := 0
		err := store.ForEach(func(Key) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("got %v after %d calls, want %v after 1", err, calls, stop)
		}
	})
}

func TestInMemoryForEachIsSorted(t *testing.T) {
	var s InMemory
	for _, k := range []Key{"b", "c", "a"} {
		if err := s.Put(k, nil); err != nil {
			t.Fatal(err)
		}
	}
	var got []Key
	_ = s.ForEach(func(k Key) error {
		got = append(got, k)
		return nil
	})
	if diff := cmp.Diff([]Key{"a", "b", "c"}, got); diff != "" {
		t.Error(diff)
	}
}
