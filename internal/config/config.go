package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBaseDirectoryPath is where goldendiff stores configuration and archived reports.
// It defaults to $GOLDENDIFF_BASE if it is set, otherwise it defaults to $HOME/lib/goldendiff.
// Commands override this via the -base flag.
var DefaultBaseDirectoryPath string

// Values accepted by the strategy key.
const (
	StrategyAuto    = "auto"
	StrategyLine    = "line"
	StrategyNative  = "native"
	StrategyUnified = "unified"
)

// Values accepted by the report-store key.
const (
	StoreNull = "null"
	StoreDisk = "disk"
	StoreS3   = "s3"
)

// DefaultContextLines is the number of unchanged lines shown around a change.
const DefaultContextLines = 3

func init() {
	if base := os.Getenv("GOLDENDIFF_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/goldendiff")
	}
}

type C struct {
	// Lines of context around each change in line and unified reports.
	// Negative means "not set", in which case the line differ falls back
	// to the nbjunit.linediff.context property.
	ContextLines int

	IgnoreCase       bool
	IgnoreEmptyLines bool

	// One of auto, line, native, unified.
	Strategy string

	// Executable used by the native strategy, e.g., "diff" or "diff -u".
	NativeCommand string

	// Where diff reports are archived - can be "null", "disk" or "s3".
	ReportStore string

	// Only makes sense if the report store is "disk".
	// If the path is relative, it will be assumed relative to the base dir.
	ReportStoreDir string

	// These only make sense if the report store is "s3".
	S3Region  string
	S3Bucket  string
	S3Profile string

	// Directory holding the config file and other files.
	base string
}

// Default returns the configuration used when the base directory holds no
// config file.
func Default(base string) *C {
	return &C{
		ContextLines:   -1,
		Strategy:       StrategyAuto,
		NativeCommand:  "diff",
		ReportStore:    StoreNull,
		ReportStoreDir: filepath.Join(base, "reports"),
		base:           base,
	}
}

// Load loads the configuration from the file called "config" in the provided base
// directory. A missing file is not an error.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return Default(base), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f, base)
	if err != nil {
		return nil, fmt.Errorf("config.Load %q: %w", filename, err)
	}
	if !filepath.IsAbs(c.ReportStoreDir) {
		c.ReportStoreDir = filepath.Clean(filepath.Join(c.base, c.ReportStoreDir))
	}
	return c, nil
}

func load(f io.Reader, base string) (*C, error) {
	const method = "load"
	c := Default(base)
	c.ReportStoreDir = "reports"
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " 	")
		if i == -1 {
			return nil, errorf(method, "no separator in %q", line)
		}
		var err error
		switch key, val := line[:i], strings.TrimSpace(line[i:]); key {
		case "context-lines":
			c.ContextLines, err = parseCount(val)
		case "ignore-case":
			c.IgnoreCase, err = parseBool(val)
		case "ignore-empty-lines":
			c.IgnoreEmptyLines, err = parseBool(val)
		case "native-command":
			c.NativeCommand = val
		case "report-store":
			c.ReportStore, err = oneOf(val, StoreNull, StoreDisk, StoreS3)
		case "report-store-dir":
			c.ReportStoreDir = val
		case "s3-bucket":
			c.S3Bucket = val
		case "s3-profile":
			c.S3Profile = val
		case "s3-region":
			c.S3Region = val
		case "strategy":
			c.Strategy, err = oneOf(val, StrategyAuto, StrategyLine, StrategyNative, StrategyUnified)
		default:
			return nil, errorf(method, "%q: %w", key, ErrUnknownKey)
		}
		if err != nil {
			return nil, errorf(method, "%q: %w", line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errorf(method, "%w", err)
	}
	return c, nil
}

func parseCount(val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q: %w", val, ErrInvalidValue)
	}
	return n, nil
}

func parseBool(val string) (bool, error) {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%q: %w", val, ErrInvalidValue)
	}
	return b, nil
}

func oneOf(val string, allowed ...string) (string, error) {
	for _, a := range allowed {
		if val == a {
			return val, nil
		}
	}
	return "", fmt.Errorf("%q not among %s: %w", val, strings.Join(allowed, ", "), ErrInvalidValue)
}

// Base returns the base directory the configuration was loaded from.
func (c *C) Base() string {
	return c.base
}

// NativeArgv splits the native command into executable and leading arguments.
func (c *C) NativeArgv() []string {
	argv := strings.Fields(c.NativeCommand)
	if len(argv) == 0 {
		return []string{"diff"}
	}
	return argv
}

// Initialize generates an initial configuration at the given directory.
func Initialize(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return fmt.Errorf("%q: could not mkdir: %w", baseDir, err)
	}
	path := filepath.Join(baseDir, "config")
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%q: already exists", path)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("%q: could not determine if it exists: %w", path, err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Lines of context around changes; comment out to honor nbjunit.linediff.context.\n")
	fmt.Fprintf(&buf, "context-lines %d\n", DefaultContextLines)
	buf.WriteString("ignore-case false\n")
	buf.WriteString("ignore-empty-lines false\n")
	fmt.Fprintf(&buf, "strategy %s\n", StrategyAuto)
	buf.WriteString("native-command diff\n")
	fmt.Fprintf(&buf, "report-store %s\n", StoreDisk)
	buf.WriteString("report-store-dir reports\n")
	err = os.WriteFile(path, buf.Bytes(), 0600)
	if err != nil {
		return fmt.Errorf("config.Initialize %q: %w", path, err)
	}
	return nil
}
