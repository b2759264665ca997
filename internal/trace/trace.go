// Package trace records the passes of a compiler instance.
//
// A compiler instance owns one Tracer. Each pass (build, link, extraction,
// emission) opens a span at ScopePass; per-module work opens child spans at
// ScopeModule. The service opens one ScopeInstance span per request.
//
//	c2c link --trace=- --trace-level=detail a.ast b.ast
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // only the ring dump after an abort
	LevelPhase               // instances and passes
	LevelDetail              // plus per-module spans
	LevelDebug               // everything
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	for l := LevelOff; l <= LevelDebug; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeModule
	case LevelDebug:
		return true
	}
	return false
}

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Scope is the granularity of an event; coarser scopes have lower values.
type Scope uint8

const (
	ScopeInstance Scope = iota + 1 // one compiler instance or service request
	ScopePass                      // build, link, extract, emit
	ScopeModule                    // one module inside a pass
	ScopeSymbol                    // single symbols (debug only)
)

func (s Scope) String() string {
	switch s {
	case ScopeInstance:
		return "instance"
	case ScopePass:
		return "pass"
	case ScopeModule:
		return "module"
	case ScopeSymbol:
		return "symbol"
	}
	return "unknown"
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	Name     string // "link", "module:a.c", ...
	Detail   string
	Extra    map[string]string
}

// Tracer receives events. Implementations must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// Config selects the tracer of an instance.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" for stderr
	RingSize   int       // > 0 keeps the last events for a dump after abort
}

// New builds the tracer described by cfg.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") {
			format = FormatNDJSON
		}
	}
	w := cfg.Output
	if w == nil {
		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			w = os.Stderr
		} else {
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace output: %w", err)
			}
			w = f
		}
	}
	stream := NewStreamTracer(w, cfg.Level, format)
	if cfg.RingSize > 0 {
		return &teeTracer{stream: stream, ring: NewRingTracer(cfg.RingSize, cfg.Level)}, nil
	}
	return stream, nil
}

// teeTracer streams events and keeps the most recent ones in memory.
type teeTracer struct {
	stream *StreamTracer
	ring   *RingTracer
}

func (t *teeTracer) Emit(ev *Event) {
	t.stream.Emit(ev)
	t.ring.Emit(ev)
}
func (t *teeTracer) Flush() error  { return t.stream.Flush() }
func (t *teeTracer) Close() error  { return t.stream.Close() }
func (t *teeTracer) Level() Level  { return t.stream.Level() }
func (t *teeTracer) Enabled() bool { return t.stream.Enabled() }

// Ring returns the in-memory buffer of tr, if it keeps one.
func Ring(tr Tracer) *RingTracer {
	switch t := tr.(type) {
	case *RingTracer:
		return t
	case *teeTracer:
		return t.ring
	}
	return nil
}
