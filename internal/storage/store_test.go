package storage

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/nicolagi/goldendiff/internal/config"
)

// Generate implements quick.Generator.
// Keys look like archived reports: a run directory and a file name.
func (Key) Generate(rand *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(generateKey(rand, size))
}

func generateKey(r *rand.Rand, size int) Key {
	if size <= 0 {
		size = 1
	}
	dir := make([]byte, 4)
	name := make([]byte, size)
	r.Read(dir)
	r.Read(name)
	return Key(fmt.Sprintf("%02x/%02x.diff", dir, name))
}

func TestKeyGenerate(t *testing.T) {
	f := func(k Key) bool {
		return k.Check() == nil
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestKeyCheck(t *testing.T) {
	for _, k := range []Key{"", "/abs", "..", "../up", "a/../../b", "a//b", "a/./b", ".", "dir/"} {
		if err := k.Check(); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("%q: got %v, want %v", k, err, ErrInvalidKey)
		}
	}
	for _, k := range []Key{"a", "run/name.diff", "run/sub/dir/name.diff", "..a"} {
		if err := k.Check(); err != nil {
			t.Errorf("%q: got %v, want nil", k, err)
		}
	}
}

func TestNewStore(t *testing.T) {
	c := config.Default(t.TempDir())
	for kind, want := range map[string]interface{}{
		config.StoreNull: NullStore{},
		config.StoreDisk: &DiskStore{},
	} {
		c.ReportStore = kind
		s, err := NewStore(c)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := reflect.TypeOf(s), reflect.TypeOf(want); got != want {
			t.Errorf("%s: got %v, want %v", kind, got, want)
		}
	}
	c.ReportStore = "ftp"
	if _, err := NewStore(c); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("got %v, want %v", err, ErrNotImplemented)
	}
	c.ReportStore = config.StoreS3
	c.S3Bucket = ""
	if _, err := NewStore(c); err == nil {
		t.Error("got nil, want error for S3 store without bucket")
	}
}

func TestStoreImplementations(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*testing.T) Store
	}{
		{
			"disk",
			func(t *testing.T) Store {
				return NewDiskStore(t.TempDir())
			},
		},
		{
			"in-memory",
			func(t *testing.T) Store {
				return &InMemory{}
			},
		},
		{
			"s3",
			func(t *testing.T) Store {
				if s3params == "" {
					t.Skip()
				}
				args := strings.Split(s3params, ",")
				if got, want := len(args), 3; got != want {
					t.Fatalf("got %d, want %d args for S3 store", got, want)
				}
				impl, err := newS3Store(&config.C{
					S3Region:  args[0],
					S3Bucket:  args[1],
					S3Profile: args[2],
				})
				if err != nil {
					t.Fatal(err)
				}
				return impl
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			testStore(t, c.setup(t))
		})
	}
}

var s3params string

func testStore(t *testing.T, impl Store) {
	t.Run("you get what you put", func(t *testing.T) {
		f := func(key Key, value Value) bool {
			err := impl.Put(key, value)
			if err != nil {
				t.Fatal(err)
			}
			v, err := impl.Get(key)
			if err != nil {
				t.Fatal(err)
			}
			return bytes.Equal(v, value)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("should not get a deleted key", func(t *testing.T) {
		f := func(key Key, value Value) bool {
			err := impl.Put(key, value)
			if err != nil {
				t.Fatal(err)
			}
			err = impl.Delete(key)
			if err != nil {
				t.Fatal(err)
			}
			v, err := impl.Get(key)
			vok := v == nil
			eok := errors.Is(err, ErrNotFound)
			if !eok {
				t.Errorf("got %v of type %T, want wrapper of %v", err, err, ErrNotFound)
			}
			return vok && eok
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("delete inexistent key is successful", func(t *testing.T) {
		f := func(key Key) bool {
			err := impl.Delete(key)
			if err != nil {
				t.Error(err)
				return false
			}
			return true
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 10}); err != nil {
			t.Error(err)
		}
	})
	t.Run("invalid keys are refused", func(t *testing.T) {
		if err := impl.Put("../escape", Value("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("got %v, want %v", err, ErrInvalidKey)
		}
	})
}

func TestNullStore(t *testing.T) {
	var s NullStore
	if err := s.Put("a/b.diff", Value("report")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("a/b.diff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want %v", err, ErrNotFound)
	}
	called := false
	_ = s.ForEach(func(Key) error {
		called = true
		return nil
	})
	if called {
		t.Error("null store has no keys")
	}
}

func TestMain(m *testing.M) {
	flag.StringVar(&s3params, "s3", "", "region, bucket, and shared credentials profile for S3 store testing")
	flag.Parse()
	os.Exit(m.Run())
}

// Invalid keys are rejected before any request is made.
func TestS3StoreChecksKeys(t *testing.T) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String("us-east-1")})
	if err != nil {
		t.Fatal(err)
	}
	store := &s3Store{client: s3.New(sess), bucket: "reports"}
	for _, k := range []Key{"", "/abs", "../up"} {
		if _, err := store.Get(k); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Get(%q): got %v, want %v", k, err, ErrInvalidKey)
		}
		if err := store.Put(k, Value("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q): got %v, want %v", k, err, ErrInvalidKey)
		}
		if err := store.Delete(k); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Delete(%q): got %v, want %v", k, err, ErrInvalidKey)
		}
	}
}
