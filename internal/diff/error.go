package diff

import "fmt"

func errorf(typeMethod, format string, a ...interface{}) error {
	return fmt.Errorf("github.com/nicolagi/goldendiff/internal/diff."+typeMethod+": "+format, a...)
}
