package symbols

// SymbolID identifies a symbol inside the instance-wide arena. Ids are
// handed out in creation order and never reused.
type SymbolID uint32

// ScopeID identifies a lexical scope inside one module table.
type ScopeID uint32

const (
	NoSymbolID SymbolID = 0
	NoScopeID  ScopeID  = 0
)

func (id SymbolID) IsValid() bool { return id != NoSymbolID }
func (id ScopeID) IsValid() bool  { return id != NoScopeID }
