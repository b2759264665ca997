package compiler

import (
	"fmt"
	"os"

	"c2c/internal/diag"
	"c2c/internal/trace"
)

// Result codes of a compilation.
const (
	CodeOK      = 0
	CodeErrors  = 1 // errors reported, compilation finished
	CodeAborted = 2 // fatal error or error ceiling
	CodeFailure = 3 // host error (I/O, bad input)
)

// Result is the structured outcome of Run.
type Result struct {
	Code        int
	Abort       *diag.Abort
	Err         error
	Diagnostics []diag.Diagnostic
}

func (r Result) OK() bool { return r.Code == CodeOK }

// Run executes fn inside the instance. An abort raised by the budget
// (ceiling or fatal error) stops fn and becomes CodeAborted; it never
// reaches the caller. Resources are released on every path, including a
// foreign panic, which is re-raised.
func (in *Instance) Run(fn func(*Instance) error) (res Result) {
	// any other panic still propagates, after the resources are released
	defer in.Close()
	var err error
	abort := diag.Catch(func() {
		err = fn(in)
	})
	if cerr := in.Close(); cerr != nil && err == nil {
		err = cerr
	}

	res.Diagnostics = in.Bag.Items()
	res.Abort = abort
	res.Err = err
	switch {
	case abort != nil:
		res.Code = CodeAborted
		if ring := trace.Ring(in.Tracer); ring != nil {
			fmt.Fprintf(os.Stderr, "trace of aborted instance %d:\n", in.ID)
			_ = ring.Dump(os.Stderr, trace.FormatText)
		}
	case err != nil:
		res.Code = CodeFailure
	case in.Budget.Errors() > 0:
		res.Code = CodeErrors
	}
	return res
}
