package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"c2c/internal/compiler"
	"c2c/internal/diag"
	"c2c/internal/options"
	"c2c/internal/source"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func printError(w io.Writer, err error) {
	var ee *exitError
	if errors.As(err, &ee) && ee.err == nil {
		return
	}
	fmt.Fprintln(w, "c2c: "+err.Error())
}

// mergeFlags takes every option whose flag was set on the command line from
// flagged and the rest from base.
func mergeFlags(base, flagged options.Options, changed func(string) bool) options.Options {
	out := base
	pick := []struct {
		flag string
		set  func()
	}{
		{"device", func() { out.Device = flagged.Device }},
		{"dialect", func() { out.Dialect = flagged.Dialect }},
		{"reentrant", func() { out.Reentrant = flagged.Reentrant }},
		{"link-required", func() { out.LinkRequired = flagged.LinkRequired }},
		{"header", func() { out.Header = flagged.Header }},
		{"output", func() { out.OutputDir = flagged.OutputDir }},
		{"allow-function-redefinition", func() { out.AllowFunctionRedefinition = flagged.AllowFunctionRedefinition }},
		{"max-errors", func() { out.MaxErrors = flagged.MaxErrors }},
		{"verbose", func() { out.Verbosity = flagged.Verbosity }},
		{"jobs", func() { out.Jobs = flagged.Jobs }},
		{"trace-level", func() { out.TraceLevel = flagged.TraceLevel }},
		{"trace", func() { out.TraceOutput = flagged.TraceOutput }},
	}
	for _, p := range pick {
		if changed(p.flag) {
			p.set()
		}
	}
	return out
}

// useColor resolves the --color flag against the terminal state of f.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true
	case "off", "never", "false":
		return false
	default:
		return isTerminal(f) && !color.NoColor
	}
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgMagenta, color.Bold)
	noteColor    = color.New(color.FgCyan)
)

// printDiagnostics writes diags in the "module:line: error: message" form,
// colouring the severity word when colorize is set.
func printDiagnostics(w io.Writer, diags []diag.Diagnostic, modules *source.ModuleSet, colorize bool) error {
	if !colorize {
		return diag.WriteAll(w, diags, modules)
	}
	for _, d := range diags {
		// a diagnostic without location starts with the severity word
		text := ": " + diag.Format(d, modules)
		for _, p := range []struct {
			word string
			c    *color.Color
		}{
			{"fatal error: ", errorColor},
			{"error: ", errorColor},
			{"warning: ", warningColor},
			{"note: ", noteColor},
		} {
			text = strings.ReplaceAll(text, ": "+p.word, ": "+p.c.Sprint(strings.TrimSuffix(p.word, ": "))+": ")
		}
		if _, err := io.WriteString(w, text[2:]); err != nil {
			return err
		}
	}
	return nil
}

// runInstance creates an instance from the invocation options, runs fn in
// it and reports the outcome. The returned error carries the exit code.
func runInstance(cmd *cobra.Command, o options.Options, fn func(*compiler.Instance) error) (compiler.Result, error) {
	inst, err := compiler.New(o)
	if err != nil {
		return compiler.Result{Code: compiler.CodeFailure, Err: err}, &exitError{code: compiler.CodeFailure, err: err}
	}
	res := inst.Run(fn)

	stderr := cmd.ErrOrStderr()
	if err := printDiagnostics(stderr, res.Diagnostics, inst.Modules, useColor(cmd, os.Stderr)); err != nil {
		return res, &exitError{code: compiler.CodeFailure, err: err}
	}
	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(stderr, inst.Timer.Summary())
	}
	switch {
	case res.Err != nil:
		return res, &exitError{code: res.Code, err: res.Err}
	case res.Code != compiler.CodeOK:
		return res, &exitError{code: res.Code}
	}
	return res, nil
}
