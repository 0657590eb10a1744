package golden

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicolagi/goldendiff/internal/diff"
)

// DiffName decides where the report comparing against pass should go. An
// empty diff means no report. A diff naming an existing directory gets the
// base name of pass, without extension, and the ".diff" extension;
// anything else is used as is.
func DiffName(pass, diff string) string {
	if diff == "" {
		return ""
	}
	fi, err := os.Stat(diff)
	if err != nil || !fi.IsDir() {
		return diff
	}
	base := filepath.Base(pass)
	if i := strings.LastIndexByte(base, '.'); i != -1 {
		base = base[:i]
	}
	return filepath.Join(diff, base+".diff")
}

// AssertFile compares test, the file produced by a test, with pass, the
// golden file. It returns a *MismatchError if they differ. See DiffName for
// the meaning of diffPath. An empty message defaults to one naming both
// files.
func AssertFile(d diff.Differ, message, test, pass, diffPath string) error {
	const method = "AssertFile"
	if d == nil {
		return errorf(method, "no differ available")
	}
	if message == "" {
		message = fmt.Sprintf("Difference between %s and %s", test, pass)
	}
	diffPath = DiffName(pass, diffPath)
	differ, err := d.Diff(test, pass, diffPath)
	if err != nil {
		return errorf(method, "%w", err)
	}
	if !differ {
		return nil
	}
	if diffPath != "" {
		if _, err := os.Stat(diffPath); err != nil {
			// Binary files, for instance, get no report.
			diffPath = ""
		}
	}
	return &MismatchError{Message: message, DiffPath: diffPath}
}
