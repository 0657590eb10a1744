package diff

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// report renders spans with numbered lines of context drawn from the
// candidate. Errors writing to w are sticky: the first one is returned by
// render and later writes are skipped.
type report struct {
	w         io.Writer
	candidate []string
	reference []string
	context   int
	style     func(Kind, string) string

	width int
	pad   string
	err   error
}

func newReport(w io.Writer, candidate, reference []string, context int, style func(Kind, string) string) *report {
	n := len(candidate)
	if len(reference) > n {
		n = len(reference)
	}
	width := len(strconv.Itoa(n))
	return &report{
		w:         w,
		candidate: candidate,
		reference: reference,
		context:   context,
		style:     style,
		width:     width,
		pad:       strings.Repeat(" ", width),
	}
}

func (r *report) render(spans []Span) error {
	// The first candidate line not printed yet.
	next := 0
	// Set when the trailing context of the previous span ran into the
	// current span, which then needs no leading context.
	precontext := false
	for i, s := range spans {
		if !precontext {
			from := s.Anchor - r.context
			if from < next {
				from = next
			}
			if from < 0 {
				from = 0
			}
			r.printContext(from, s.Anchor)
		}
		precontext = false

		after := s.Anchor
		switch s.Kind {
		case Inserted:
			for j := s.Start; j < s.End; j++ {
				r.println(Inserted, fmt.Sprintf("%s + %s", r.pad, r.reference[j]))
			}
		case Deleted:
			for j := s.Start; j < s.End; j++ {
				r.println(Deleted, fmt.Sprintf("%*d - %s", r.width, j+1, r.candidate[j]))
			}
			after = s.End
		}

		end := after + r.context
		if i+1 < len(spans) {
			if following := spans[i+1].Anchor; following-r.context <= end {
				end = following
				precontext = true
			}
		}
		if end > len(r.candidate) {
			end = len(r.candidate)
		}
		if end < after {
			end = after
		}
		r.printContext(after, end)
		next = end
	}
	return r.err
}

func (r *report) printContext(from, to int) {
	for j := from; j < to; j++ {
		r.println(Context, fmt.Sprintf("%*d   %s", r.width, j+1, r.candidate[j]))
	}
}

func (r *report) println(kind Kind, line string) {
	if r.err != nil {
		return
	}
	if r.style != nil {
		line = r.style(kind, line)
	}
	_, r.err = fmt.Fprintln(r.w, line)
}
