// Package driver runs the passes of a compiler instance over a set of
// module trees: load, build, link or extract, emit.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"c2c/internal/ast"
	"c2c/internal/compiler"
	"c2c/internal/diag"
	"c2c/internal/source"
	"c2c/internal/trace"
)

// Input is one decoded module tree and its id in the instance module set.
type Input struct {
	ID   source.ModuleID
	File *ast.File
}

// Load decodes the trees at paths in parallel and registers them, in path
// order, with the instance. An unreadable tree is a fatal diagnostic.
func Load(ctx context.Context, inst *compiler.Instance, paths []string) ([]Input, error) {
	span := trace.Begin(inst.Tracer, trace.ScopePass, "load", inst.Span())
	defer span.End("")
	phase := inst.Timer.Begin("load")
	defer inst.Timer.End(phase, fmt.Sprintf("%d modules", len(paths)))

	jobs := inst.Options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	files := make([]*ast.File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fd, err := inst.Open(path)
			if err != nil {
				return fmt.Errorf("can not open module %s: %w", path, err)
			}
			f, err := ast.Decode(fd)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if f.Path == "" {
				f.Path = path
			}
			if f.Module == "" {
				f.Module = path
			}
			// индекс i уникален для горутины, мьютекс не нужен
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		diag.ReportFatal(inst.Reporter(), diag.InputCannotOpenModule, source.Loc{}, err.Error()).Emit()
		return nil, err
	}
	return Register(inst, files), nil
}

// Register adds already decoded trees to the instance, in order.
func Register(inst *compiler.Instance, files []*ast.File) []Input {
	out := make([]Input, len(files))
	for i, f := range files {
		flags := source.ModuleFlags(0)
		if f.Path == "" {
			flags = source.ModuleVirtual
		}
		out[i] = Input{ID: inst.Modules.Add(f.Module, f.Path, flags), File: f}
	}
	return out
}
