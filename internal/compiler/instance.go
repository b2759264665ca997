// Package compiler owns the state of one compilation.
//
// An Instance bundles what would otherwise be process-global: the symbol id
// counter (the arena), the type interner, the ABI pair, the option set, the
// diagnostic budget and the open-resource registry. Concurrent compilations
// use separate instances and share nothing.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"c2c/internal/abi"
	"c2c/internal/diag"
	"c2c/internal/etype"
	"c2c/internal/observ"
	"c2c/internal/options"
	"c2c/internal/source"
	"c2c/internal/symbols"
	"c2c/internal/trace"
	"c2c/internal/types"
)

var instanceIDs atomic.Uint64

// Instance is one compiler instance.
type Instance struct {
	ID      uint64
	Options options.Options
	Pair    abi.Pair
	Dialect abi.Dialect

	Modules *source.ModuleSet
	Arena   *symbols.Arena
	Types   *types.Interner
	Folder  *etype.Folder // bound to the source ABI

	Bag      *diag.Bag
	Budget   *diag.Budget
	reporter diag.Reporter
	Tracer   trace.Tracer
	Timer    *observ.Timer
	rootSpan *trace.Span

	mu        sync.Mutex
	resources []resource
	closed    bool
}

type resource struct {
	name    string
	release func() error
}

// New creates an instance from validated options.
func New(opts options.Options) (*Instance, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tracer, err := trace.New(opts.Trace())
	if err != nil {
		return nil, err
	}
	return NewWithTracer(opts, tracer), nil
}

// NewWithTracer creates an instance that reports to tracer.
func NewWithTracer(opts options.Options, tracer trace.Tracer) *Instance {
	if tracer == nil {
		tracer = trace.Nop
	}
	pair, dialect := opts.ABIPair()
	in := types.NewInterner()
	bag := diag.NewBag(0)
	inst := &Instance{
		ID:      instanceIDs.Add(1),
		Options: opts,
		Pair:    pair,
		Dialect: dialect,
		Modules: source.NewModuleSet(),
		Arena:   symbols.NewArena(0),
		Types:   in,
		Folder:  etype.NewFolder(pair.Source, in),
		Bag:     bag,
		Budget:  diag.NewBudget(diag.BagReporter{Bag: bag}, opts.MaxErrors, opts.Verbosity),
		Tracer:  tracer,
		Timer:   observ.NewTimer(),
	}
	// повторы отбрасываются до подсчёта ошибок
	inst.reporter = diag.NewDedupReporter(inst.Budget)
	inst.rootSpan = trace.Begin(tracer, trace.ScopeInstance, fmt.Sprintf("instance:%d", inst.ID), 0)
	inst.Register("tracer", tracer)
	return inst
}

// Reporter is the budget-gated reporter every pass reports through.
// Identical reports (same code, severity, location and message) reach it once.
func (in *Instance) Reporter() diag.Reporter { return in.reporter }

// Span returns the id of the instance span, the parent of every pass span.
func (in *Instance) Span() uint64 { return in.rootSpan.ID() }

// Register adds a resource released by Close, most recent first.
func (in *Instance) Register(name string, c io.Closer) {
	in.registerFunc(name, c.Close)
}

func (in *Instance) registerFunc(name string, release func() error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		// registration after teardown releases at once
		_ = release()
		return
	}
	in.resources = append(in.resources, resource{name: name, release: release})
}

// Open opens a file and registers it with the instance.
func (in *Instance) Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	in.Register(path, f)
	return f, nil
}

// Create creates an output file and registers it with the instance.
func (in *Instance) Create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	in.Register(path, f)
	return f, nil
}

// TempDir creates a temporary directory removed by Close.
func (in *Instance) TempDir(pattern string) (string, error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}
	in.registerFunc(dir, func() error { return os.RemoveAll(dir) })
	return dir, nil
}

// Close releases every registered resource. It is idempotent; errors from
// already-closed files are ignored.
func (in *Instance) Close() error {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return nil
	}
	in.closed = true
	res := in.resources
	in.resources = nil
	in.mu.Unlock()

	in.rootSpan.End("")
	var errs []error
	for i := len(res) - 1; i >= 0; i-- {
		if err := res[i].release(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, fmt.Errorf("release %s: %w", res[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// openResources counts what Close still has to release.
func (in *Instance) openResources() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.resources)
}
