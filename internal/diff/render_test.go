package diff

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("l%d", i+1)
	}
	return lines
}

func without(lines []string, indices ...int) []string {
	skip := make(map[int]bool)
	for _, i := range indices {
		skip[i] = true
	}
	var out []string
	for i, line := range lines {
		if !skip[i] {
			out = append(out, line)
		}
	}
	return out
}

func renderString(t *testing.T, candidate, reference []string, context int) string {
	t.Helper()
	var buf bytes.Buffer
	spans := merge(align(candidate, reference, exact))
	if err := newReport(&buf, candidate, reference, context, nil).render(spans); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRender(t *testing.T) {
	t.Run("changed line", func(t *testing.T) {
		candidate := numbered(10)
		reference := numbered(10)
		reference[4] = "L5"
		want := strings.Join([]string{
			" 2   l2",
			" 3   l3",
			" 4   l4",
			" 5 - l5",
			"   + L5",
			" 6   l6",
			" 7   l7",
			" 8   l8",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, candidate, reference, 3))
	})
	t.Run("distant changes get their own context", func(t *testing.T) {
		candidate := numbered(20)
		reference := without(candidate, 2, 14)
		want := strings.Join([]string{
			" 1   l1",
			" 2   l2",
			" 3 - l3",
			" 4   l4",
			" 5   l5",
			" 6   l6",
			"12   l12",
			"13   l13",
			"14   l14",
			"15 - l15",
			"16   l16",
			"17   l17",
			"18   l18",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, candidate, reference, 3))
	})
	t.Run("close changes share context", func(t *testing.T) {
		candidate := numbered(12)
		reference := without(candidate, 2, 6)
		want := strings.Join([]string{
			" 1   l1",
			" 2   l2",
			" 3 - l3",
			" 4   l4",
			" 5   l5",
			" 6   l6",
			" 7 - l7",
			" 8   l8",
			" 9   l9",
			"10   l10",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, candidate, reference, 3))
	})
	t.Run("context stops at end of file", func(t *testing.T) {
		candidate := []string{"a", "b", "c"}
		reference := []string{"a", "b", "c", "d"}
		want := strings.Join([]string{
			"1   a",
			"2   b",
			"3   c",
			"  + d",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, candidate, reference, 3))
	})
	t.Run("missing block from the middle", func(t *testing.T) {
		want := strings.Join([]string{
			"1   a",
			"  + b",
			"  + c",
			"2   d",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, []string{"a", "d"}, []string{"a", "b", "c", "d"}, 3))
	})
	t.Run("no context", func(t *testing.T) {
		want := strings.Join([]string{
			"2 - b",
			"3 - c",
			"",
		}, "\n")
		assert.Equal(t, want, renderString(t, []string{"a", "b", "c", "d"}, []string{"a", "d"}, 0))
	})
	t.Run("width follows the longer file", func(t *testing.T) {
		want := strings.Join([]string{
			" 1   a",
			"   + b",
			"   + c",
			"   + d",
			"   + e",
			"   + f",
			"   + g",
			"   + h",
			"   + i",
			"   + j",
			"",
		}, "\n")
		reference := strings.Split("a b c d e f g h i j", " ")
		assert.Equal(t, want, renderString(t, []string{"a"}, reference, 3))
	})
	t.Run("nothing to render", func(t *testing.T) {
		assert.Equal(t, "", renderString(t, []string{"a"}, []string{"a"}, 3))
	})
}

func TestRenderStyle(t *testing.T) {
	var buf bytes.Buffer
	style := func(k Kind, line string) string {
		return k.String() + "|" + line
	}
	spans := merge(align([]string{"a", "x"}, []string{"a", "y"}, exact))
	err := newReport(&buf, []string{"a", "x"}, []string{"a", "y"}, 1, style).render(spans)
	assert.Nil(t, err)
	assert.Equal(t, "context|1   a\ndeleted|2 - x\ninserted|  + y\n", buf.String())
}

type failingWriter struct {
	calls int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestRenderStopsAtFirstWriteError(t *testing.T) {
	w := &failingWriter{}
	spans := []Span{deletion(0, 3)}
	err := newReport(w, []string{"a", "b", "c"}, nil, 3, nil).render(spans)
	assert.NotNil(t, err)
	assert.Equal(t, 1, w.calls)
}
