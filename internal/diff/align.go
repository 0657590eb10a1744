package diff

// Kind tells what a rendered line or a Span stands for.
type Kind int

const (
	// Context lines are common to both files.
	Context Kind = iota
	// Inserted lines are in the reference but missing from the candidate.
	Inserted
	// Deleted lines are in the candidate but missing from the reference.
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Context:
		return "context"
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Span is a contiguous block of changed lines. For Inserted spans, [Start,
// End) indexes the reference and Anchor is the candidate index the lines
// belong before. For Deleted spans, [Start, End) indexes the candidate and
// Anchor equals Start.
type Span struct {
	Kind   Kind
	Start  int
	End    int
	Anchor int
}

func insertion(start, end, anchor int) Span {
	return Span{Kind: Inserted, Start: start, End: end, Anchor: anchor}
}

func deletion(start, end int) Span {
	return Span{Kind: Deleted, Start: start, End: end, Anchor: start}
}

// indexFrom returns the index of the first line at or after from equal to
// line, or -1.
func indexFrom(lines []string, from int, line string, equal func(a, b string) bool) int {
	for i := from; i < len(lines); i++ {
		if equal(lines[i], line) {
			return i
		}
	}
	return -1
}

// align scans the candidate and the reference with a cursor each. The
// driving side looks for its current line on the other side; the first
// match wins. A gap of two or more lines is not committed right away the
// first time it's seen: the other side gets one chance to drive first.
//
// The returned spans are ordered by anchor. Identical inputs give no spans.
func align(candidate, reference []string, equal func(a, b string) bool) []Span {
	var spans []Span
	left, right := 0, 0 // cursors into reference and candidate
	rightDriving := true
	jump := false
	for right < len(candidate) || left < len(reference) {
		if right >= len(candidate) {
			spans = append(spans, insertion(left, len(reference), right))
			break
		}
		if left >= len(reference) {
			spans = append(spans, deletion(right, len(candidate)))
			break
		}
		if rightDriving {
			found := indexFrom(reference, left, candidate[right], equal)
			if found == -1 {
				spans = append(spans, deletion(right, right+1))
				rightDriving = false
			} else {
				if found > left {
					if !jump && found-left >= 2 {
						jump = true
						rightDriving = false
						continue
					}
					spans = append(spans, insertion(left, found, right))
				}
				left = found + 1
			}
			right++
		} else {
			found := indexFrom(candidate, right, reference[left], equal)
			if found == -1 {
				spans = append(spans, insertion(left, left+1, right))
			} else {
				if found > right {
					if !jump && found-right >= 2 {
						jump = true
						rightDriving = true
						continue
					}
					spans = append(spans, deletion(right, found))
				}
				right = found + 1
			}
			left++
			rightDriving = true
		}
		jump = false
	}
	return spans
}

// merge coalesces spans of the same kind that abut: insertions contiguous
// in the reference, deletions contiguous in the candidate. The slice is
// modified in place and returned shortened. After a merge the extended span
// is compared with its new successor before moving on.
func merge(spans []Span) []Span {
	i := 0
	for i+1 < len(spans) {
		a, b := spans[i], spans[i+1]
		if a.Kind == b.Kind && a.End == b.Start {
			spans[i].End = b.End
			spans = append(spans[:i+1], spans[i+2:]...)
			continue
		}
		i++
	}
	return spans
}
