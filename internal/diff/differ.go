package diff

import "github.com/nicolagi/goldendiff/internal/config"

// Differ compares a candidate file with a reference file. It reports whether
// they differ and, if destination is not empty, may write details there.
// What gets written depends on the implementation; binary files never get a
// report.
type Differ interface {
	Diff(candidate, reference, destination string) (bool, error)
}

// New builds the differ selected by the configuration's strategy. Extra
// options apply to the line differ, wherever it is used.
func New(c *config.C, opts ...Option) (Differ, error) {
	const method = "New"
	lineOpts := []Option{
		WithIgnoreCase(c.IgnoreCase),
		WithIgnoreEmptyLines(c.IgnoreEmptyLines),
		WithContextLines(c.ContextLines),
	}
	line := NewLineDiff(append(lineOpts, opts...)...)
	switch c.Strategy {
	case config.StrategyAuto, "":
		return Auto{Text: line}, nil
	case config.StrategyLine:
		return line, nil
	case config.StrategyNative:
		return Native{Argv: c.NativeArgv()}, nil
	case config.StrategyUnified:
		return Auto{Text: Unified{ContextLines: line.ContextLines()}}, nil
	default:
		return nil, errorf(method, "%q: %w", c.Strategy, config.ErrInvalidValue)
	}
}
