package diff

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxLineLength = 64 << 20

// readLines splits r into lines, without terminators. Blank lines are
// dropped when ignoreEmpty is set, so indices refer to the kept lines.
func readLines(r io.Reader, ignoreEmpty bool) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for s.Scan() {
		line := s.Text()
		if ignoreEmpty && strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func readFileLines(pathname string, ignoreEmpty bool) ([]string, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithField("path", pathname).Warningf("Could not close: %v", err)
		}
	}()
	lines, err := readLines(f, ignoreEmpty)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", pathname)
	}
	return lines, nil
}
