package golden

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nicolagi/goldendiff/internal/diff"
	"github.com/nicolagi/goldendiff/internal/storage"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	refExt  = ".ref"
	passExt = ".pass"
	diffExt = ".diff"
)

// Harness compares test output in WorkDir with golden files in GoldenDir.
type Harness struct {
	WorkDir   string
	GoldenDir string
	Differ    diff.Differ

	// Reports of mismatches are archived here, if not nil.
	Store storage.Store

	// Prefix of archived report keys.
	RunID string
}

func NewHarness(workDir, goldenDir string, d diff.Differ, store storage.Store) *Harness {
	return &Harness{
		WorkDir:   workDir,
		GoldenDir: goldenDir,
		Differ:    d,
		Store:     store,
		RunID:     uuid.NewString(),
	}
}

// Outcome is the result of comparing one .ref file with its .pass file.
type Outcome struct {
	// Slash-separated path relative to the golden directory, without extension.
	Name string

	Test string
	Pass string
	// Empty unless a report was written.
	Diff string

	Differ bool
	// Size of the test file.
	Size int64
	Err  error
}

// Summary counts outcomes. Bytes sums the sizes of the compared test files.
type Summary struct {
	Compared  int
	Differing int
	Failed    int
	Bytes     int64
}

func (h *Harness) paths(name string) (test, pass, diffPath string) {
	rel := filepath.FromSlash(name)
	return filepath.Join(h.WorkDir, rel+refExt),
		filepath.Join(h.GoldenDir, rel+passExt),
		filepath.Join(h.WorkDir, rel+diffExt)
}

// CompareReferenceFiles compares WorkDir/name.ref with GoldenDir/name.pass,
// leaving WorkDir/name.diff behind if they differ. The error is a
// *MismatchError when the files differ.
func (h *Harness) CompareReferenceFiles(name string) error {
	o := h.compare(name)
	if o.Err != nil {
		return o.Err
	}
	if o.Differ {
		return &MismatchError{Message: "Files differ", DiffPath: o.Diff}
	}
	return nil
}

func (h *Harness) compare(name string) Outcome {
	const method = "Harness.compare"
	test, pass, diffPath := h.paths(name)
	o := Outcome{Name: name, Test: test, Pass: pass}
	fi, err := os.Stat(test)
	if err != nil {
		o.Err = errorf(method, "%w", err)
		return o
	}
	o.Size = fi.Size()
	// Stale reports from earlier runs go first.
	if err := os.Remove(diffPath); err != nil && !os.IsNotExist(err) {
		o.Err = errorf(method, "%w", err)
		return o
	}
	err = AssertFile(h.Differ, "", test, pass, diffPath)
	var mismatch *MismatchError
	switch {
	case err == nil:
	case errors.As(err, &mismatch):
		o.Differ = true
		o.Diff = mismatch.DiffPath
		h.archive(o)
	default:
		o.Err = err
	}
	log.WithFields(log.Fields{
		"name":   name,
		"differ": o.Differ,
	}).Debug("Compared reference file")
	return o
}

// archive stores the report, if any. Failing to archive does not change
// the outcome.
func (h *Harness) archive(o Outcome) {
	if h.Store == nil || o.Diff == "" {
		return
	}
	entry := log.WithFields(log.Fields{
		"name": o.Name,
		"run":  h.RunID,
	})
	b, err := os.ReadFile(o.Diff)
	if err != nil {
		entry.Warningf("Could not read report to archive: %v", err)
		return
	}
	if err := h.Store.Put(h.ReportKey(o.Name), b); err != nil {
		entry.Warningf("Could not archive report: %v", err)
	}
}

// ReportKey is where the report for name is archived.
func (h *Harness) ReportKey(name string) storage.Key {
	return storage.Key(path.Join(h.RunID, name+diffExt))
}

// CompareTree compares every .pass file below GoldenDir with the .ref file
// at the same relative path below WorkDir, running up to jobs comparisons at
// a time. Problems with single files are reported in their outcome; the
// error is only for failing to walk GoldenDir or a canceled context.
// Outcomes are sorted by name.
func (h *Harness) CompareTree(ctx context.Context, jobs int) ([]Outcome, Summary, error) {
	const method = "Harness.CompareTree"
	var names []string
	err := filepath.WalkDir(h.GoldenDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, passExt) {
			return nil
		}
		rel, err := filepath.Rel(h.GoldenDir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, passExt)))
		return nil
	})
	if err != nil {
		return nil, Summary{}, errorf(method, "walking %q: %w", h.GoldenDir, err)
	}

	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	var mu sync.Mutex
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		if gctx.Err() != nil {
			break
		}
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := h.compare(name)
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, errorf(method, "%w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, errorf(method, "%w", err)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Name < outcomes[j].Name })
	var s Summary
	for _, o := range outcomes {
		s.Compared++
		s.Bytes += o.Size
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Differ:
			s.Differing++
		}
	}
	return outcomes, s, nil
}
