package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if !strings.EqualFold(l.String(), name) {
			t.Fatalf("ParseLevel(%q) = %s", name, l)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	pass := Begin(tr, ScopePass, "link", 0)
	mod := Begin(tr, ScopeModule, "module:a.c", pass.ID())
	mod.End("")
	pass.WithExtra("modules", "1").End("ok")

	want := "  -> link\n  <- link (ok) {modules=1}\n"
	if got := buf.String(); got != want {
		t.Fatalf("trace = %q, want %q", got, want)
	}
	if mod.ID() != 0 {
		t.Fatalf("filtered span got an id")
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeModule, "module:b.c", 7).End("")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev["kind"] != "end" || ev["scope"] != "module" || ev["parent_id"] != float64(7) {
		t.Fatalf("event = %v", ev)
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeSymbol, n, "", 0)
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot = %s", got)
	}
}

func TestTeeExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeInstance, "request", 0).End("")
	ring := Ring(tr)
	if ring == nil || len(ring.Snapshot()) != 2 {
		t.Fatalf("ring not fed")
	}
	if buf.Len() == 0 {
		t.Fatalf("stream not fed")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should give Nop")
	}
	r := NewRingTracer(1, LevelDebug)
	if FromContext(WithTracer(context.Background(), r)) != r {
		t.Fatalf("tracer not carried by context")
	}
}
