package golden

import "fmt"

// MismatchError reports files that differ. DiffPath is empty when no
// report was requested or the differ doesn't produce one.
type MismatchError struct {
	Message  string
	DiffPath string
}

func (e *MismatchError) Error() string {
	if e.DiffPath == "" {
		return e.Message
	}
	return fmt.Sprintf("%s; check %s", e.Message, e.DiffPath)
}

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/goldendiff/internal/golden."+typeMethod+": "+format, a...)
}
