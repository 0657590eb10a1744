package diff

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	bytesForBinaryFileCheck = 1024
	binaryChunkSize         = 1024
)

// Auto compares binary files byte by byte and hands text files to Text, or
// to a default LineDiff if Text is nil. Differing binary files get no
// report.
type Auto struct {
	Text Differ
}

var _ Differ = Auto{}

func (a Auto) Diff(candidate, reference, destination string) (bool, error) {
	binary, err := IsBinary(candidate, reference)
	if err != nil {
		return false, err
	}
	if binary {
		same, err := sameBytes(candidate, reference)
		if err != nil {
			return false, err
		}
		log.WithFields(log.Fields{
			"candidate": candidate,
			"reference": reference,
			"differ":    !same,
		}).Debug("Compared binary files")
		return !same, nil
	}
	text := a.Text
	if text == nil {
		text = NewLineDiff()
	}
	return text.Diff(candidate, reference, destination)
}

// IsBinary looks at the first bytes of each file. Any byte with the high bit
// set makes the pair binary.
func IsBinary(pathnames ...string) (bool, error) {
	buf := make([]byte, bytesForBinaryFileCheck)
	for _, p := range pathnames {
		n, err := readHead(p, buf)
		if err != nil {
			return false, err
		}
		if hasHighBit(buf[:n]) {
			return true, nil
		}
	}
	return false, nil
}

func hasHighBit(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return true
		}
	}
	return false
}

func readHead(pathname string, buf []byte) (int, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	defer closeQuietly(f)
	n, err := io.ReadFull(f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, errors.Wrapf(err, "reading %q", pathname)
}

// sameBytes compares two files chunk by chunk, after checking sizes.
func sameBytes(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, errors.WithStack(err)
	}
	defer closeQuietly(fa)
	fb, err := os.Open(b)
	if err != nil {
		return false, errors.WithStack(err)
	}
	defer closeQuietly(fb)
	ia, err := fa.Stat()
	if err != nil {
		return false, errors.WithStack(err)
	}
	ib, err := fb.Stat()
	if err != nil {
		return false, errors.WithStack(err)
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}
	ba := make([]byte, binaryChunkSize)
	bb := make([]byte, binaryChunkSize)
	for {
		na, erra := io.ReadFull(fa, ba)
		nb, errb := io.ReadFull(fb, bb)
		if na != nb || !bytes.Equal(ba[:na], bb[:nb]) {
			return false, nil
		}
		if erra == io.EOF || erra == io.ErrUnexpectedEOF {
			return errb == io.EOF || errb == io.ErrUnexpectedEOF, nil
		}
		if erra != nil {
			return false, errors.Wrapf(erra, "reading %q", a)
		}
		if errb != nil && errb != io.EOF && errb != io.ErrUnexpectedEOF {
			return false, errors.Wrapf(errb, "reading %q", b)
		}
	}
}

func closeQuietly(f *os.File) {
	// Ignore error closing file opened only for reading.
	_ = f.Close()
}
