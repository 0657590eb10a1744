package diff

import (
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Native runs an external diff executable. Argv holds the executable and
// any leading arguments, the candidate and reference paths are appended.
// Output of the process, both standard output and standard error, goes to
// the destination. Any non-zero exit status means the files differ.
type Native struct {
	Argv []string
}

var _ Differ = Native{}

func (n Native) Diff(candidate, reference, destination string) (differ bool, err error) {
	const method = "Native.Diff"
	argv := n.Argv
	if len(argv) == 0 {
		argv = []string{"diff"}
	}
	var out io.Writer = io.Discard
	if destination != "" {
		f, cerr := os.Create(destination)
		if cerr != nil {
			return false, errors.WithStack(cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errorf(method, "%q: %w", destination, cerr)
			}
		}()
		out = f
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return false, errors.WithStack(err)
	}
	cmd := exec.Command(argv[0], append(argv[1:], candidate, reference)...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return false, errorf(method, "starting %q: %w", argv[0], err)
	}
	// The child holds its own copy of the write end.
	_ = pw.Close()

	drained := make(chan error, 1)
	go func() {
		_, err := io.Copy(out, pr)
		if err != nil {
			// Keep the child from blocking on a full pipe.
			_, _ = io.Copy(io.Discard, pr)
		}
		drained <- err
	}()
	waitErr := cmd.Wait()
	copyErr := <-drained
	_ = pr.Close()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			log.WithFields(log.Fields{
				"candidate": candidate,
				"reference": reference,
				"status":    exitErr.ExitCode(),
			}).Debug("Native diff reported differences")
			if copyErr != nil {
				return true, errorf(method, "%q: %w", destination, copyErr)
			}
			return true, nil
		}
		return false, errorf(method, "waiting for %q: %w", argv[0], waitErr)
	}
	if copyErr != nil {
		return false, errorf(method, "%q: %w", destination, copyErr)
	}
	return false, nil
}
