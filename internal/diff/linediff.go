package diff

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ContextProperty names the property holding the default number of context
// lines. It is looked up in the environment, as is its upper case alias
// with underscores, which shells can set more easily.
const ContextProperty = "nbjunit.linediff.context"

const defaultContextLines = 3

// LineDiff is the heuristic line differ. Its zero value is not usable, see
// NewLineDiff. A LineDiff holds no state across calls and may be shared.
type LineDiff struct {
	ignoreCase       bool
	ignoreEmptyLines bool
	contextLines     int
	style            func(Kind, string) string
}

var _ Differ = (*LineDiff)(nil)

type lineDiffOptions struct {
	ignoreCase       bool
	ignoreEmptyLines bool
	contextLines     int
	lookup           func(string) (string, bool)
	style            func(Kind, string) string
}

// Option configures a LineDiff.
type Option func(*lineDiffOptions)

// WithIgnoreCase compares lines case-insensitively.
func WithIgnoreCase(enabled bool) Option {
	return func(o *lineDiffOptions) {
		o.ignoreCase = enabled
	}
}

// WithIgnoreEmptyLines drops blank lines from both files before comparing.
func WithIgnoreEmptyLines(enabled bool) Option {
	return func(o *lineDiffOptions) {
		o.ignoreEmptyLines = enabled
	}
}

// WithContextLines overrides the ContextProperty. Negative values are
// ignored.
func WithContextLines(n int) Option {
	return func(o *lineDiffOptions) {
		if n >= 0 {
			o.contextLines = n
		}
	}
}

// WithLookup replaces os.LookupEnv as the source of ContextProperty.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *lineDiffOptions) {
		o.lookup = lookup
	}
}

// WithLineStyle decorates every rendered report line, e.g., to colour it.
func WithLineStyle(style func(Kind, string) string) Option {
	return func(o *lineDiffOptions) {
		o.style = style
	}
}

func NewLineDiff(opts ...Option) *LineDiff {
	o := lineDiffOptions{
		contextLines: -1,
		lookup:       os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.contextLines < 0 {
		o.contextLines = contextFromProperty(o.lookup)
	}
	return &LineDiff{
		ignoreCase:       o.ignoreCase,
		ignoreEmptyLines: o.ignoreEmptyLines,
		contextLines:     o.contextLines,
		style:            o.style,
	}
}

func contextFromProperty(lookup func(string) (string, bool)) int {
	alias := strings.ToUpper(strings.ReplaceAll(ContextProperty, ".", "_"))
	for _, name := range []string{ContextProperty, alias} {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			log.WithField("property", name).Debugf("Ignoring context lines value %q", val)
			continue
		}
		return n
	}
	return defaultContextLines
}

// ContextLines returns the number of context lines printed around changes.
func (l *LineDiff) ContextLines() int {
	return l.contextLines
}

func (l *LineDiff) equal(a, b string) bool {
	if l.ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Compare aligns the candidate lines against the reference lines and returns
// the merged changes, in candidate order. No spans means no differences.
func (l *LineDiff) Compare(candidate, reference []string) []Span {
	spans := merge(align(candidate, reference, l.equal))
	if log.GetLevel() >= log.DebugLevel {
		log.WithFields(log.Fields{
			"candidate": len(candidate),
			"reference": len(reference),
			"spans":     len(spans),
		}).Debugf("Aligned lines:\n%s", spew.Sdump(spans))
	}
	return spans
}

// Render writes the report for spans previously computed by Compare.
func (l *LineDiff) Render(w io.Writer, candidate, reference []string, spans []Span) error {
	return newReport(w, candidate, reference, l.contextLines, l.style).render(spans)
}

func (l *LineDiff) read(candidate, reference string) (c, r []string, err error) {
	if c, err = readFileLines(candidate, l.ignoreEmptyLines); err != nil {
		return nil, nil, err
	}
	if r, err = readFileLines(reference, l.ignoreEmptyLines); err != nil {
		return nil, nil, err
	}
	return c, r, nil
}

// DiffTo compares the two files and, if they differ and w is not nil,
// writes the report to w.
func (l *LineDiff) DiffTo(w io.Writer, candidate, reference string) (bool, error) {
	c, r, err := l.read(candidate, reference)
	if err != nil {
		return false, err
	}
	spans := l.Compare(c, r)
	if len(spans) == 0 {
		return false, nil
	}
	if w != nil {
		if err := l.Render(w, c, r, spans); err != nil {
			return true, errors.Wrap(err, "writing report")
		}
	}
	return true, nil
}

// Diff implements Differ. The destination file is only created when the
// files differ.
func (l *LineDiff) Diff(candidate, reference, destination string) (bool, error) {
	const method = "LineDiff.Diff"
	c, r, err := l.read(candidate, reference)
	if err != nil {
		return false, err
	}
	spans := l.Compare(c, r)
	if len(spans) == 0 {
		return false, nil
	}
	if destination == "" {
		return true, nil
	}
	f, err := os.Create(destination)
	if err != nil {
		return true, errors.WithStack(err)
	}
	if err := l.Render(f, c, r, spans); err != nil {
		_ = f.Close()
		return true, errorf(method, "%q: %w", destination, err)
	}
	if err := f.Close(); err != nil {
		return true, errorf(method, "%q: %w", destination, err)
	}
	return true, nil
}
