package main

import (
	"bytes"
	"errors"
	"testing"

	"c2c/internal/diag"
	"c2c/internal/options"
	"c2c/internal/source"
)

func TestMergeFlagsKeepsFileValuesForUnsetFlags(t *testing.T) {
	file := options.Default()
	file.Device = "ilp32"
	file.MaxErrors = 9
	flagged := options.Default()
	flagged.MaxErrors = 2
	flagged.Reentrant = true

	changed := map[string]bool{"max-errors": true}
	got := mergeFlags(file, flagged, func(name string) bool { return changed[name] })
	if got.Device != "ilp32" {
		t.Fatalf("device = %q, want the file value", got.Device)
	}
	if got.MaxErrors != 2 {
		t.Fatalf("max errors = %d, want the flag value 2", got.MaxErrors)
	}
	if got.Reentrant {
		t.Fatalf("reentrant taken from an unset flag")
	}
}

func TestWriteListingAlignsByDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{
		{"a", "object", "external"},
		{"größe", "function", "internal"},
	}
	if err := writeListing(&buf, rows); err != nil {
		t.Fatalf("writeListing: %v", err)
	}
	want := "a      object    external\n" +
		"größe  function  internal\n"
	if buf.String() != want {
		t.Fatalf("listing:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPrintDiagnosticsPlain(t *testing.T) {
	ms := source.NewModuleSet()
	id := ms.Add("a.c", "a.c", 0)
	bag := diag.NewBag(0)
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.LinkUnresolved, source.Loc{Module: id, Line: 3}, "undefined reference to 'x'").Emit()

	var buf bytes.Buffer
	if err := printDiagnostics(&buf, bag.Items(), ms, false); err != nil {
		t.Fatalf("printDiagnostics: %v", err)
	}
	if got, want := buf.String(), "a.c:3: error: undefined reference to 'x'\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(&exitError{code: 2}); got != 2 {
		t.Fatalf("exit code = %d, want 2", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("exit code = %d, want 1", got)
	}
	var buf bytes.Buffer
	printError(&buf, &exitError{code: 1})
	if buf.Len() != 0 {
		t.Fatalf("code-only exit printed %q", buf.String())
	}
}
