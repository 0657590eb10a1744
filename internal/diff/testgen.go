//go:build ignore
// +build ignore

// Command testgen takes two arguments, the reference and candidate files,
// and an optional argument -U to specify the number of unified context
// lines. It runs the system's diff executable on those two files and the
// Unified differ of this package, and then diffs the results using the
// system diff. If there is a mismatch, a test case is easily constructed
// from the files left around by this command.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"

	"github.com/nicolagi/goldendiff/internal/diff"
)

func main() {
	contextLines := flag.Int("U", 3, "unified context lines")
	verbose := flag.Bool("v", false, "show output when system diff and goldendiff match")
	flag.Parse()
	if flag.NArg() != 2 {
		log.Fatalf("want 2 args, got %d", flag.NArg())
	}

	args := flag.Args()
	reference, candidate := args[0], args[1]

	// Exit status will be 1, ignoring error. It might generate a bad test case but it'll be trivial to notice.
	want, _ := exec.Command("diff", "-U", strconv.Itoa(*contextLines), reference, candidate).CombinedOutput()
	// Skip lines with "--- $path" and "+++ $path".
	want = skipLine(skipLine(want))

	var buf bytes.Buffer
	u := diff.Unified{ContextLines: *contextLines}
	if _, err := u.DiffTo(&buf, candidate, reference); err != nil {
		log.Fatal(err)
	}
	got := skipLine(skipLine(buf.Bytes()))

	wantFile, err := os.CreateTemp("", "testgen-want-")
	if err != nil {
		log.Fatal(err)
	}
	gotFile, err := os.CreateTemp("", "testgen-got-")
	if err != nil {
		log.Fatal(err)
	}
	_, _ = wantFile.Write(want)
	_, _ = gotFile.Write(got)
	_ = wantFile.Close()
	_ = gotFile.Close()

	mismatch, _ := exec.Command("diff", "-U", strconv.Itoa(*contextLines), wantFile.Name(), gotFile.Name()).CombinedOutput()

	if m := string(mismatch); m != "" {
		fmt.Fprintln(os.Stderr, m)
		os.Exit(1)
	} else {
		log.Printf("Output of size %d bytes matched.", len(got))
		if *verbose {
			fmt.Fprintln(os.Stderr, string(got))
		}
		_ = os.Remove(wantFile.Name())
		_ = os.Remove(gotFile.Name())
	}
}

func skipLine(b []byte) []byte {
	if i := bytes.IndexByte(b, 10); i != -1 {
		return b[i+1:]
	}
	return b
}
