package layout

import (
	"sync"

	"c2c/internal/types"
)

type cache struct {
	mu     sync.RWMutex
	byType map[types.TypeID]TypeLayout
}

func newCache() *cache {
	return &cache{byType: make(map[types.TypeID]TypeLayout, 256)}
}

func (c *cache) get(id types.TypeID) (TypeLayout, bool) {
	if c == nil {
		return TypeLayout{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.byType[id]
	return l, ok
}

func (c *cache) put(id types.TypeID, l TypeLayout) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.byType[id] = l
	c.mu.Unlock()
}
