package symbols

import (
	"strconv"
	"strings"
)

// Scope is one lexical block. Name maps keep the representative symbol of
// each name; earlier declarations of the same entity are its brothers.
type Scope struct {
	Parent ScopeID
	Depth  int
	Label  string
	Closed bool

	names map[string]SymbolID
	tags  map[string]SymbolID
}

// Path renders the scope chain as "f:0:1", empty for the top level.
func (t *Table) scopePath(id ScopeID) string {
	var parts []string
	for id.IsValid() {
		sc := t.scope(id)
		if sc.Depth == 0 {
			break
		}
		parts = append(parts, sc.Label)
		id = sc.Parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ":")
}

func (t *Table) scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// EnterScope opens a nested block. An empty label gets a sequence number;
// function bodies pass the function name.
func (t *Table) EnterScope(label string) ScopeID {
	if label == "" {
		label = strconv.Itoa(t.unnamed)
		t.unnamed++
	}
	parent := t.scope(t.cur)
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, Scope{
		Parent: t.cur,
		Depth:  parent.Depth + 1,
		Label:  label,
		names:  make(map[string]SymbolID),
		tags:   make(map[string]SymbolID),
	})
	t.cur = id
	return id
}

// ExitScope closes the innermost block. A closed scope is never re-entered;
// exiting the top level panics.
func (t *Table) ExitScope() {
	sc := t.scope(t.cur)
	if sc.Depth == 0 {
		panic("symbols: ExitScope at top level")
	}
	sc.Closed = true
	t.cur = sc.Parent
}

// Depth is the current nesting depth, 0 at top level.
func (t *Table) Depth() int { return t.scope(t.cur).Depth }

// IsTopLevel reports whether no block is open.
func (t *Table) IsTopLevel() bool { return t.Depth() == 0 }

// CurrentScope returns the innermost open scope.
func (t *Table) CurrentScope() ScopeID { return t.cur }
