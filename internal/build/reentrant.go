package build

import "c2c/internal/symbols"

// classify sorts the file-scope state of a reentrant module into instance
// data and extern references, then collects the tags and typedefs the
// instance-data declarations need.
func (b *builder) classify() {
	seen := make(map[symbols.SymbolID]bool, len(b.candidates))
	for _, c := range b.candidates {
		rep := c
		if c.IsTopLevel() {
			if top := b.tab.LookupTop(c.Name); top != nil && top.Kind == symbols.KindObject {
				rep = top
			}
		}
		if seen[rep.ID] {
			continue
		}
		seen[rep.ID] = true

		switch {
		case rep.IsExtern():
			b.tab.AddExtern(rep)
		case !rep.IsTopLevel():
			// a local static keeps its state across calls, so it moves out
			// of its function under a module-unique name
			b.env.Arena.Rename(rep.ID, b.tab.Mangle(rep.Name))
			b.tab.AddInstanceData(rep)
		default:
			b.tab.AddInstanceData(rep)
		}
	}

	for _, s := range b.tab.InstanceData() {
		group := b.env.Arena.Brothers(s.ID)
		if group == nil {
			group = []symbols.SymbolID{s.ID}
		}
		for _, member := range group {
			for _, p := range b.env.Arena.ParentClosure(member) {
				dep := b.env.Arena.Get(p)
				if dep.Kind.IsTag() || dep.Kind == symbols.KindTypedef {
					b.tab.AddExtractedTag(dep)
				}
			}
		}
	}
}
