package diff

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andreyvit/diff"
	"github.com/pkg/errors"
)

// Unified prints a unified diff turning the reference into the candidate.
// Unlike LineDiff it looks for a minimal line diff, so it is useful when
// the heuristic alignment gets confused by reordered blocks.
// CRLF line terminators compare equal to LF ones. Case and blank lines
// always count: the ignore options apply to LineDiff only.
type Unified struct {
	ContextLines int
}

var _ Differ = Unified{}

func (u Unified) Diff(candidate, reference, destination string) (bool, error) {
	if destination == "" {
		return u.DiffTo(nil, candidate, reference)
	}
	cb, rb, err := readBoth(candidate, reference)
	if err != nil {
		return false, err
	}
	if bytes.Equal(cb, rb) {
		return false, nil
	}
	f, err := os.Create(destination)
	if err != nil {
		return true, errors.WithStack(err)
	}
	werr := u.write(f, candidate, reference, string(cb), string(rb))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return true, errors.Wrapf(werr, "writing %q", destination)
}

// DiffTo writes the unified diff to w, if w is not nil and the files differ.
func (u Unified) DiffTo(w io.Writer, candidate, reference string) (bool, error) {
	cb, rb, err := readBoth(candidate, reference)
	if err != nil {
		return false, err
	}
	if bytes.Equal(cb, rb) {
		return false, nil
	}
	if w == nil {
		return true, nil
	}
	return true, u.write(w, candidate, reference, string(cb), string(rb))
}

func (u Unified) write(w io.Writer, candidate, reference, cContent, rContent string) error {
	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", reference, candidate); err != nil {
		return err
	}
	return unified(w, diff.LineDiffAsLines(rContent, cContent), u.ContextLines)
}

func readBoth(candidate, reference string) (c, r []byte, err error) {
	if c, err = os.ReadFile(candidate); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if r, err = os.ReadFile(reference); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	return toLF(c), toLF(r), nil
}

func toLF(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// unified groups lines prefixed with ' ', '-' or '+' into hunks.
func unified(w io.Writer, lines []string, contextLines int) error {
	// While processing lines, we're either in a hunk or in common segment. The
	// hunk is nil if we are in a common segment.
	var hunk *hunk

	// When we're not in the middle of a hunk, we keep the most recent common
	// lines in a ring buffer. When starting a new hunk, the common lines will
	// be backfilled into the hunk and the ring buffer will be emptied out.
	common := newRingBuffer(contextLines)

	if isLikelyBinaryFile(lines) {
		_, err := fmt.Fprintln(w, "Binary files differ")
		return err
	}

	var leftOffset, rightOffset int
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if line[0] == ' ' {
			// A common line. If in the middle of a hunk, we might get to the
			// point where a hunk cannot be extended so we can print it and add
			// the following common lines to the ring buffer rather than the
			// hunk.
			if hunk != nil {
				hunk.appendCommon(line)
				if hunk.isComplete() {
					for _, line := range hunk.trim() {
						common.enqueue(line)
					}
					if err := hunk.printTo(w); err != nil {
						return err
					}
					hunk = nil
				}
			} else {
				common.enqueue(line)
			}
		} else {
			if hunk == nil {
				hunk = newHunk(leftOffset, rightOffset, common.dequeueAll(), contextLines)
			}
			if line[0] == '-' {
				hunk.appendLeft(line)
			} else {
				hunk.appendRight(line)
			}
		}
		switch line[0] {
		case '-':
			leftOffset++
		case ' ':
			leftOffset++
			rightOffset++
		case '+':
			rightOffset++
		}
	}
	if hunk != nil {
		hunk.trim()
		return hunk.printTo(w)
	}
	return nil
}

// Look at a few thousand bytes and see if any of them is null.
func isLikelyBinaryFile(lines []string) bool {
	count := 0
	for _, line := range lines {
		if strings.Contains(line, "\x00") {
			return true
		}
		count += len(line)
		if count >= 1<<16 {
			break
		}
	}
	return false
}
