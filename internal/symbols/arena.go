package symbols

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// Arena owns every symbol of one compiler instance together with the
// brother and parent relations between them. Module tables built in
// parallel share one arena, so creation and relation updates are locked.
type Arena struct {
	mu   sync.RWMutex
	data []*Symbol // index 0 reserved for NoSymbolID

	// brothers: symbol -> group index; each group lists its members in link order
	group  map[SymbolID]int
	groups [][]SymbolID

	parents map[SymbolID][]SymbolID
}

// NewArena creates a symbol arena with optional capacity hint.
func NewArena(capacity uint32) *Arena {
	if capacity == 0 {
		capacity = 64
	}
	return &Arena{
		data:    make([]*Symbol, 1, capacity+1),
		group:   make(map[SymbolID]int),
		parents: make(map[SymbolID][]SymbolID),
	}
}

// New stores sym under the next id and returns it.
func (a *Arena) New(sym Symbol) *Symbol {
	a.mu.Lock()
	defer a.mu.Unlock()
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("symbol arena overflow: %w", err))
	}
	sym.ID = SymbolID(value)
	p := &sym
	a.data = append(a.data, p)
	return p
}

// Get returns the symbol or nil if ID is invalid.
func (a *Arena) Get(id SymbolID) *Symbol {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return a.data[id]
}

// Len reports total number of symbols excluding the sentinel.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data) - 1
}

// LinkBrother records that a and b declare the same entity. Groups are
// merged, so the relation is transitive.
func (a *Arena) LinkBrother(x, y SymbolID) {
	if x == y {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	gx, okX := a.group[x]
	gy, okY := a.group[y]
	switch {
	case !okX && !okY:
		a.groups = append(a.groups, []SymbolID{x, y})
		idx := len(a.groups) - 1
		a.group[x], a.group[y] = idx, idx
	case okX && !okY:
		a.groups[gx] = append(a.groups[gx], y)
		a.group[y] = gx
	case !okX && okY:
		a.groups[gy] = append(a.groups[gy], x)
		a.group[x] = gy
	case gx != gy:
		for _, id := range a.groups[gy] {
			a.group[id] = gx
		}
		a.groups[gx] = append(a.groups[gx], a.groups[gy]...)
		a.groups[gy] = nil
	}
}

// Brothers returns the group of id (id included), or nil when id has none.
func (a *Arena) Brothers(id SymbolID) []SymbolID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.group[id]
	if !ok {
		return nil
	}
	return slices.Clone(a.groups[g])
}

// AreBrothers reports whether x and y declare the same entity.
func (a *Arena) AreBrothers(x, y SymbolID) bool {
	if x == y {
		return true
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	gx, okX := a.group[x]
	gy, okY := a.group[y]
	return okX && okY && gx == gy
}

// LinkParent records that the text of sym depends on dep. Self edges and
// duplicates are ignored.
func (a *Arena) LinkParent(sym, dep SymbolID) {
	if sym == dep || !dep.IsValid() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if slices.Contains(a.parents[sym], dep) {
		return
	}
	a.parents[sym] = append(a.parents[sym], dep)
}

// Parents returns the direct dependencies of id in link order.
func (a *Arena) Parents(id SymbolID) []SymbolID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.parents[id])
}

// ParentClosure returns every transitive dependency of id, dependencies
// before dependents, each once.
func (a *Arena) ParentClosure(id SymbolID) []SymbolID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []SymbolID
	seen := map[SymbolID]bool{id: true}
	var visit func(SymbolID)
	visit = func(s SymbolID) {
		for _, p := range a.parents[s] {
			if seen[p] {
				continue
			}
			seen[p] = true
			visit(p)
			out = append(out, p)
		}
	}
	visit(id)
	return out
}

// Rename sets the output name of id and all its brothers.
func (a *Arena) Rename(id SymbolID, name string) {
	for _, s := range a.withBrothers(id) {
		s.Rename = name
	}
}

// SetProgramInternal marks id and all its brothers as resolved to an
// in-program definition.
func (a *Arena) SetProgramInternal(id SymbolID) {
	for _, s := range a.withBrothers(id) {
		s.ProgramInternal = true
	}
}

func (a *Arena) withBrothers(id SymbolID) []*Symbol {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	g, ok := a.group[id]
	if !ok {
		return []*Symbol{a.data[id]}
	}
	out := make([]*Symbol, 0, len(a.groups[g]))
	for _, b := range a.groups[g] {
		out = append(out, a.data[b])
	}
	return out
}
