package diff

import (
	"fmt"
	"io"
)

// See https://www.gnu.org/software/diffutils/manual/html_node/Hunks.html.
type hunk struct {
	// These four describe the location of the hunk (reference/candidate
	// offset/count), rendered for example as "@@ -15,3 +17,5 @@".
	lo int
	lc int
	ro int
	rc int

	lines []string

	// Counts the number of lines since the last difference. With 3 lines of
	// context, the hunk is definitely closed after 7 common lines (4 need
	// to be removed from the hunk).
	sinceLastDiff int

	clen int

	printErr error
}

func newHunk(lo, ro int, backfill []string, contextLines int) *hunk {
	l := len(backfill)
	return &hunk{
		lo:    lo - l,
		ro:    ro - l,
		lc:    l,
		rc:    l,
		lines: backfill,
		clen:  contextLines,
	}
}

func (h *hunk) appendLeft(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff = 0
	h.lc++
}

func (h *hunk) appendRight(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff = 0
	h.rc++
}

func (h *hunk) appendCommon(line string) {
	h.lines = append(h.lines, line)
	h.sinceLastDiff++
	h.lc++
	h.rc++
}

func (h *hunk) isComplete() bool {
	return h.sinceLastDiff >= 2*h.clen+1
}

func (h *hunk) trim() []string {
	if h.sinceLastDiff <= h.clen {
		return nil
	}
	delc := h.sinceLastDiff - h.clen
	del := h.lines[len(h.lines)-delc:]
	h.lines = h.lines[:len(h.lines)-delc]
	h.lc -= delc
	h.rc -= delc
	return del
}

// GNU diff prints the line before an empty range, hence no +1 for counts of 0.
func location(offset, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", offset)
	case 1:
		return fmt.Sprintf("%d", offset+1)
	default:
		return fmt.Sprintf("%d,%d", offset+1, count)
	}
}

func (h *hunk) printTo(w io.Writer) error {
	h.print(w, "@@ -%s +%s @@\n", location(h.lo, h.lc), location(h.ro, h.rc))
	for _, line := range h.lines {
		h.print(w, "%s\n", line)
	}
	return h.printErr
}

func (h *hunk) print(w io.Writer, format string, a ...interface{}) {
	if h.printErr != nil {
		return
	}
	_, h.printErr = fmt.Fprintf(w, format, a...)
}
