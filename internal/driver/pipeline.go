package driver

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"c2c/internal/ast"
	"c2c/internal/build"
	"c2c/internal/compiler"
	"c2c/internal/emit"
	"c2c/internal/link"
	"c2c/internal/source"
	"c2c/internal/trace"
)

// Output is what one compilation produced.
type Output struct {
	Modules []*build.Module
	Global  *link.Global
	// Layout is set by reentrant compilations.
	Layout *emit.Layout
}

// Compile builds every module table, then links them. It stops after the
// build when errors are pending, as linking broken tables only adds noise.
func Compile(inst *compiler.Instance, inputs []Input) *Output {
	out := &Output{}
	env := &build.Env{
		Arena:                     inst.Arena,
		Types:                     inst.Types,
		Folder:                    inst.Folder,
		Reporter:                  inst.Reporter(),
		Dialect:                   inst.Dialect,
		Reentrant:                 inst.Options.Reentrant,
		AllowFunctionRedefinition: inst.Options.AllowFunctionRedefinition,
	}

	pass := trace.Begin(inst.Tracer, trace.ScopePass, "build", inst.Span())
	phase := inst.Timer.Begin("build")
	for _, in := range inputs {
		span := trace.Begin(inst.Tracer, trace.ScopeModule, "module:"+in.File.Module, pass.ID())
		m := build.Build(env, in.ID, in.File)
		span.WithExtra("symbols", fmt.Sprint(len(m.Table.Symbols()))).End("")
		out.Modules = append(out.Modules, m)
	}
	inst.Timer.End(phase, fmt.Sprintf("%d modules", len(inputs)))
	pass.End("")
	if inst.Budget.Errors() > 0 {
		return out
	}

	opts := link.Options{Required: inst.Options.LinkRequired}
	if !inst.Options.Reentrant {
		pass = trace.Begin(inst.Tracer, trace.ScopePass, "link", inst.Span())
		phase = inst.Timer.Begin("link")
		l := link.NewLinker(opts, inst.Arena, inst.Types, inst.Reporter())
		for _, m := range out.Modules {
			l.Add(m.Name, m.Table)
		}
		out.Global = l.Run()
		inst.Timer.End(phase, "")
		pass.WithExtra("global", fmt.Sprint(out.Global.Len())).End("")
		return out
	}

	pass = trace.Begin(inst.Tracer, trace.ScopePass, "extract", inst.Span())
	phase = inst.Timer.Begin("extract")
	x := link.NewExtractionLinker(opts, inst.Arena, inst.Types, inst.Reporter())
	files := make(map[source.ModuleID]*ast.File, len(out.Modules))
	for _, m := range out.Modules {
		x.Add(m.Name, m.Table)
		files[m.ID] = m.File
	}
	out.Global = x.Run()
	out.Layout = &emit.Layout{
		Types:        inst.Types,
		Files:        files,
		Tags:         x.ExtractedTags(),
		InstanceData: x.InstanceData(),
		Initialized:  x.InitializedInstanceData(),
	}
	inst.Timer.End(phase, "")
	pass.WithExtra("instance_data", fmt.Sprint(len(out.Layout.InstanceData))).End("")
	return out
}

// Emit writes the generated files of a reentrant compilation into the
// output directory and returns their paths. Nothing is written while
// errors are pending.
func Emit(inst *compiler.Instance, out *Output) ([]string, error) {
	if out.Layout == nil || inst.Budget.Errors() > 0 {
		return nil, nil
	}
	span := trace.Begin(inst.Tracer, trace.ScopePass, "emit", inst.Span())
	defer span.End("")
	dir := inst.Options.OutputDir
	if dir == "" {
		dir = "."
	}
	h, c := emit.Paths(filepath.Clean(dir), inst.Options.Header)
	if err := writeFile(inst, h, func(w io.Writer) error { return emit.WriteHeader(w, out.Layout) }); err != nil {
		return nil, err
	}
	if err := writeFile(inst, c, func(w io.Writer) error { return emit.WriteMain(w, filepath.Base(h)) }); err != nil {
		return nil, err
	}
	return []string{h, c}, nil
}

// writeFile creates path through the instance registry, so an abort while
// writing still closes it.
func writeFile(inst *compiler.Instance, path string, fill func(io.Writer) error) error {
	fd, err := inst.Create(path)
	if err != nil {
		return fmt.Errorf("can not modify global data file '%s': %w", path, err)
	}
	w := bufio.NewWriter(fd)
	if err := fill(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("can not modify global data file '%s': %w", path, err)
	}
	// закрываем сразу: ошибка записи видна здесь, а не при Close инстанса
	if err := fd.Close(); err != nil {
		return fmt.Errorf("can not modify global data file '%s': %w", path, err)
	}
	return nil
}
