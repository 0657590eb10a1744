package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/nicolagi/goldendiff/internal/config"
	"github.com/nicolagi/goldendiff/internal/diff"
	"github.com/nicolagi/goldendiff/internal/golden"
	"github.com/nicolagi/goldendiff/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Exit statuses, the same as diff(1).
const (
	exitSame    = 0
	exitDiffer  = 1
	exitTrouble = 2
)

var (
	// To set this at build time, use go build -ldflags '-X main.version=something'.
	version = "unknown"

	// Flag sets are associated with the fields of a corresponding context struct. The global context is for flags
	// that are part of all flag sets, that is, all sub-commands.
	globalContext struct {
		base     string
		logLevel string
	}

	diffContext struct {
		strategy         string
		context          int
		ignoreCase       bool
		ignoreEmptyLines bool
		// Names of the flags given on the command line.
		set    map[string]bool
		output string
		color  bool
	}

	suiteContext struct {
		jobs int
	}
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&globalContext.base, "base", config.DefaultBaseDirectoryPath, "`directory` for configuration and archived reports")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&globalContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	return fs
}

func exitUsage(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s COMMAND [ARGS]

Commands:

	diff: compare a candidate file with a reference file

		The report goes to standard output, or to the file named by -o.
		Exit status is 0 if the files are the same, 1 if they differ, 2 on trouble.

	init: initializes configuration given the base directory
	reports: list archived reports, optionally only those of the given run
	suite: compare every .pass file under a golden directory with the .ref file under a work directory
	version: show version information
`, os.Args[0])
	os.Exit(exitTrouble)
}

func main() {
	diffFlags := newFlagSet("diff")
	diffFlags.StringVar(&diffContext.strategy, "strategy", "", "comparison `strategy`, among auto, line, native, unified (default from config)")
	diffFlags.IntVar(&diffContext.context, "U", -1, "number of context `lines` (default from config)")
	diffFlags.BoolVar(&diffContext.ignoreCase, "i", false, "ignore case differences, -i=false overrides the config file")
	diffFlags.BoolVar(&diffContext.ignoreEmptyLines, "B", false, "ignore blank lines, -B=false overrides the config file")
	diffFlags.StringVar(&diffContext.output, "o", "", "write the report to `file` instead of standard output")
	diffFlags.BoolVar(&diffContext.color, "color", false, "colour the report on standard output")

	suiteFlags := newFlagSet("suite")
	suiteFlags.IntVar(&suiteContext.jobs, "j", runtime.NumCPU(), "number of concurrent `comparisons`")

	// For all commands that don't take flags.
	emptyFlags := newFlagSet("empty")

	if len(os.Args) < 2 {
		exitUsage("Command name required")
	}

	switch cmd := os.Args[1]; cmd {
	case "diff":
		// Ignoring error - here and in all other cases below - because we configure flag sets to exit on error.
		_ = diffFlags.Parse(os.Args[2:])
		if narg := diffFlags.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("diff: 2 args expected, got %d", narg))
		}
		diffContext.set = make(map[string]bool)
		diffFlags.Visit(func(f *flag.Flag) {
			diffContext.set[f.Name] = true
		})
	case "suite":
		_ = suiteFlags.Parse(os.Args[2:])
		if narg := suiteFlags.NArg(); narg != 2 {
			exitUsage(fmt.Sprintf("suite: 2 args expected, got %d", narg))
		}
	case "reports":
		_ = emptyFlags.Parse(os.Args[2:])
		if narg := emptyFlags.NArg(); narg > 1 {
			exitUsage(fmt.Sprintf("reports: at most 1 arg expected, got %d", narg))
		}
	case "init", "version":
		_ = emptyFlags.Parse(os.Args[2:])
		if narg := emptyFlags.NArg(); narg != 0 {
			exitUsage(fmt.Sprintf("%s: no args expected, got %d", cmd, narg))
		}
	default:
		exitUsage(fmt.Sprintf("%q: command not recognized", cmd))
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.JSONFormatter{})
	// Fatal log entries mean trouble, not differences.
	log.StandardLogger().ExitFunc = func(int) { os.Exit(exitTrouble) }
	ll, err := log.ParseLevel(globalContext.logLevel)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", globalContext.logLevel, err)
	}
	log.SetLevel(ll)

	switch os.Args[1] {
	case "version":
		fmt.Println(version)
		return
	case "init":
		// The init subcommand must create configuration, not use it.
		if err := config.Initialize(globalContext.base); err != nil {
			log.Fatalf("Could not initialize config in %q: %v", globalContext.base, err)
		}
		return
	}

	cfg, err := config.Load(globalContext.base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", globalContext.base, err)
	}

	switch cmd := os.Args[1]; cmd {
	case "diff":
		args := diffFlags.Args()
		status, err := runDiff(cfg, os.Stdout, args[0], args[1])
		if err != nil {
			log.WithFields(log.Fields{
				"op":    cmd,
				"cause": err,
			}).Fatal("Could not compare files")
		}
		os.Exit(status)

	case "suite":
		cmdlog := log.WithField("op", cmd)
		store, err := storage.NewStore(cfg)
		if err != nil {
			cmdlog.WithField("cause", err).Fatal("Could not create report store")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		args := suiteFlags.Args()
		status, err := runSuite(ctx, cfg, store, os.Stdout, args[0], args[1])
		if err != nil {
			cmdlog.WithField("cause", err).Fatal("Could not compare trees")
		}
		stop()
		os.Exit(status)

	case "reports":
		cmdlog := log.WithField("op", cmd)
		store, err := storage.NewStore(cfg)
		if err != nil {
			cmdlog.WithField("cause", err).Fatal("Could not create report store")
		}
		if err := listReports(store, os.Stdout, emptyFlags.Arg(0)); err != nil {
			cmdlog.WithField("cause", err).Fatal("Could not list reports")
		}

	default:
		panic("not reached")
	}
}

var (
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	insertedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func colorize(k diff.Kind, line string) string {
	switch k {
	case diff.Deleted:
		return deletedStyle.Render(line)
	case diff.Inserted:
		return insertedStyle.Render(line)
	default:
		return line
	}
}

// runDiff applies the diff command's flags over cfg, compares the files and
// writes the report to the -o file or to stdout.
func runDiff(cfg *config.C, stdout io.Writer, candidate, reference string) (int, error) {
	if diffContext.strategy != "" {
		cfg.Strategy = diffContext.strategy
	}
	if diffContext.context >= 0 {
		cfg.ContextLines = diffContext.context
	}
	// Given flags win over the config file either way, e.g., -i=false.
	if diffContext.set["i"] {
		cfg.IgnoreCase = diffContext.ignoreCase
	}
	if diffContext.set["B"] {
		cfg.IgnoreEmptyLines = diffContext.ignoreEmptyLines
	}
	var opts []diff.Option
	if diffContext.color && diffContext.output == "" {
		opts = append(opts, diff.WithLineStyle(colorize))
	}
	d, err := diff.New(cfg, opts...)
	if err != nil {
		return exitTrouble, err
	}

	destination := diffContext.output
	if destination == "" {
		dir, err := os.MkdirTemp("", "goldendiff")
		if err != nil {
			return exitTrouble, err
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				log.WithField("dir", dir).Warningf("Could not remove temporary directory: %v", err)
			}
		}()
		destination = filepath.Join(dir, "report")
	}
	differ, err := d.Diff(candidate, reference, destination)
	if err != nil {
		return exitTrouble, err
	}
	if !differ {
		return exitSame, nil
	}
	if diffContext.output == "" {
		if err := copyFile(stdout, destination); err != nil {
			return exitTrouble, err
		}
	}
	return exitDiffer, nil
}

// copyFile copies the report to w. A missing report, as for binary files,
// is not an error.
func copyFile(w io.Writer, pathname string) error {
	f, err := os.Open(pathname)
	if os.IsNotExist(err) {
		_, err = fmt.Fprintf(w, "Binary files differ\n")
		return err
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	_, err = io.Copy(w, f)
	return err
}

func runSuite(ctx context.Context, cfg *config.C, store storage.Store, stdout io.Writer, workDir, goldenDir string) (int, error) {
	d, err := diff.New(cfg)
	if err != nil {
		return exitTrouble, err
	}
	h := golden.NewHarness(workDir, goldenDir, d, store)
	outcomes, summary, err := h.CompareTree(ctx, suiteContext.jobs)
	if err != nil {
		return exitTrouble, err
	}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			_, _ = fmt.Fprintf(stdout, "FAIL %s: %v\n", o.Name, o.Err)
		case o.Differ && o.Diff != "":
			_, _ = fmt.Fprintf(stdout, "DIFF %s: %s\n", o.Name, o.Diff)
		case o.Differ:
			_, _ = fmt.Fprintf(stdout, "DIFF %s\n", o.Name)
		}
	}
	_, err = fmt.Fprintf(stdout, "%d compared, %d differ, %d failed, %s checked (run %s)\n",
		summary.Compared, summary.Differing, summary.Failed, humanize.Bytes(uint64(summary.Bytes)), h.RunID)
	if err != nil {
		return exitTrouble, err
	}
	if summary.Failed > 0 {
		return exitTrouble, nil
	}
	if summary.Differing > 0 {
		return exitDiffer, nil
	}
	return exitSame, nil
}

func listReports(store storage.Store, stdout io.Writer, run string) error {
	e, ok := store.(storage.Enumerable)
	if !ok {
		return fmt.Errorf("store %T cannot list its reports", store)
	}
	return e.ForEach(func(k storage.Key) error {
		if run != "" && !strings.HasPrefix(string(k), run+"/") {
			return nil
		}
		_, err := fmt.Fprintln(stdout, k)
		return err
	})
}
