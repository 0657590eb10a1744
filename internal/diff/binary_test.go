package diff_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolagi/goldendiff/internal/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDiffer remembers whether it was asked to compare anything.
type recordingDiffer struct {
	called bool
}

func (r *recordingDiffer) Diff(candidate, reference, destination string) (bool, error) {
	r.called = true
	return true, nil
}

func TestIsBinary(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "text", "plain\ttext\n")
	high := writeFile(t, dir, "high", "caf\xc3\xa9\n")
	late := writeFile(t, dir, "late", string(bytes.Repeat([]byte("a"), 1024))+"\xff")
	empty := writeFile(t, dir, "empty", "")

	for _, c := range []struct {
		paths []string
		want  bool
	}{
		{[]string{text}, false},
		{[]string{empty}, false},
		{[]string{high}, true},
		{[]string{text, high}, true},
		{[]string{late}, false},
	} {
		got, err := diff.IsBinary(c.paths...)
		require.Nil(t, err)
		assert.Equal(t, c.want, got, "%v", c.paths)
	}
	_, err := diff.IsBinary(filepath.Join(dir, "missing"))
	assert.NotNil(t, err)
}

func TestAuto(t *testing.T) {
	dir := t.TempDir()
	long := bytes.Repeat([]byte{0x80, 1, 2, 3}, 1000)
	a := writeFile(t, dir, "a.bin", string(long))
	b := writeFile(t, dir, "b.bin", string(long[:len(long)-1]))
	flipped := append([]byte(nil), long...)
	flipped[len(flipped)-1] ^= 0xff
	c := writeFile(t, dir, "c.bin", string(flipped))
	destination := filepath.Join(dir, "out.diff")

	t.Run("binary file never differs from itself", func(t *testing.T) {
		text := &recordingDiffer{}
		differ, err := diff.Auto{Text: text}.Diff(a, a, destination)
		require.Nil(t, err)
		assert.False(t, differ)
		assert.False(t, text.called)
	})
	t.Run("lengths differ", func(t *testing.T) {
		text := &recordingDiffer{}
		differ, err := diff.Auto{Text: text}.Diff(a, b, destination)
		require.Nil(t, err)
		assert.True(t, differ)
		assert.False(t, text.called)
	})
	t.Run("last chunk differs", func(t *testing.T) {
		differ, err := diff.Auto{}.Diff(a, c, destination)
		require.Nil(t, err)
		assert.True(t, differ)
	})
	t.Run("no report for binary files", func(t *testing.T) {
		_, err := os.Stat(destination)
		assert.True(t, os.IsNotExist(err))
	})
	t.Run("text goes to the text differ", func(t *testing.T) {
		text := &recordingDiffer{}
		x := writeFile(t, dir, "x.txt", "x\n")
		differ, err := diff.Auto{Text: text}.Diff(x, x, destination)
		require.Nil(t, err)
		assert.True(t, differ)
		assert.True(t, text.called)
	})
	t.Run("default text differ is the line differ", func(t *testing.T) {
		x := writeFile(t, dir, "x.txt", "x\n")
		y := writeFile(t, dir, "y.txt", "y\n")
		differ, err := diff.Auto{}.Diff(x, y, destination)
		require.Nil(t, err)
		assert.True(t, differ)
		report, err := os.ReadFile(destination)
		require.Nil(t, err)
		assert.Contains(t, string(report), "1 - x")
	})
}
