package ast

import "fmt"

// NodeKind enumerates syntax-tree node kinds.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota

	// declarations
	KindModule     // children: top-level declarations
	KindDecl       // Text=name (empty for a tag-only declaration); children: type, init, attrs...
	KindFuncDef    // Text=name; children: TypeFunc, Compound body, attrs...
	KindParam      // Text=name (may be empty); children: type
	KindField      // Text=name; children: type
	KindEnumerator // Text=name; children: optional value
	KindAttr       // Text=attribute name; children: arguments

	// statements
	KindCompound
	KindExprStmt
	KindReturn
	KindIf
	KindWhile
	KindFor // children: init, cond, step, body (any may be NoNodeID)

	// expressions
	KindIntLit
	KindFloatLit
	KindCharLit
	KindStringLit
	KindIdent
	KindBinary // Text=operator
	KindAssign // Text=operator
	KindUnary  // Text=operator; "post++"/"post--" for postfix forms
	KindCast   // children: type, expr
	KindSizeof // children: type (FlagTypeOperand) or expr
	KindCall   // children: callee, args...
	KindMember // Text=member; FlagArrow for ->
	KindIndex
	KindCond
	KindInitList   // children: elements
	KindDesignated // Text=field, or children: index [, upper] value
	KindVectorLit  // children: type, elements...

	// type expressions
	KindTypeName // Text=scalar keyword, OpenCL vector name or typedef name
	KindTypePointer
	KindTypeArray // children: elem, optional size expr
	KindTypeFunc  // children: result, params...
	KindTypeStruct
	KindTypeUnion
	KindTypeEnum
)

var kindNames = map[NodeKind]string{
	KindModule: "module", KindDecl: "decl", KindFuncDef: "funcdef", KindParam: "param",
	KindField: "field", KindEnumerator: "enumerator", KindAttr: "attr",
	KindCompound: "compound", KindExprStmt: "exprstmt", KindReturn: "return",
	KindIf: "if", KindWhile: "while", KindFor: "for",
	KindIntLit: "int", KindFloatLit: "float", KindCharLit: "char", KindStringLit: "string",
	KindIdent: "ident", KindBinary: "binary", KindAssign: "assign", KindUnary: "unary",
	KindCast: "cast", KindSizeof: "sizeof", KindCall: "call", KindMember: "member",
	KindIndex: "index", KindCond: "cond", KindInitList: "initlist", KindDesignated: "designated",
	KindVectorLit: "vectorlit",
	KindTypeName: "typename", KindTypePointer: "typeptr", KindTypeArray: "typearray",
	KindTypeFunc: "typefunc", KindTypeStruct: "typestruct", KindTypeUnion: "typeunion",
	KindTypeEnum: "typeenum",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// IsType reports type-expression kinds.
func (k NodeKind) IsType() bool {
	return k >= KindTypeName && k <= KindTypeEnum
}

// IsExpr reports expression kinds.
func (k NodeKind) IsExpr() bool {
	return k >= KindIntLit && k <= KindVectorLit
}

// Spec is a storage-class or function specifier as written.
type Spec uint8

const (
	SpecTypedef Spec = iota + 1
	SpecExtern
	SpecStatic
	SpecAuto
	SpecRegister
	SpecInline
	SpecKernel
)

func (s Spec) String() string {
	switch s {
	case SpecTypedef:
		return "typedef"
	case SpecExtern:
		return "extern"
	case SpecStatic:
		return "static"
	case SpecAuto:
		return "auto"
	case SpecRegister:
		return "register"
	case SpecInline:
		return "inline"
	case SpecKernel:
		return "__kernel"
	}
	return fmt.Sprintf("Spec(%d)", s)
}

// Flags carries per-node modifiers.
type Flags uint16

const (
	FlagConst Flags = 1 << iota
	FlagVolatile
	FlagRestrict
	FlagGlobal
	FlagLocal
	FlagConstantSpace
	FlagPrivate
	FlagVariadic    // TypeFunc: trailing ...
	FlagVoidList    // TypeFunc: (void)
	FlagHasBody     // TypeStruct/Union/Enum: member list present
	FlagArrow       // Member: ->
	FlagTypeOperand // Sizeof: operand is a type
	FlagRange       // Designated: [lo ... hi]
	FlagBuiltin     // Decl/FuncDef/typedef provided by the environment
)

// Node is one syntax-tree node.
type Node struct {
	Kind     NodeKind `msgpack:"k"`
	Line     uint32   `msgpack:"l,omitempty"`
	Text     string   `msgpack:"t,omitempty"`
	Specs    []Spec   `msgpack:"s,omitempty"`
	Flags    Flags    `msgpack:"f,omitempty"`
	Children []NodeID `msgpack:"c,omitempty"`
}

// Child returns the i-th child or NoNodeID.
func (n *Node) Child(i int) NodeID {
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}

// Has reports whether all of f are set.
func (n *Node) Has(f Flags) bool {
	return n != nil && n.Flags&f == f
}

// HasSpec reports whether s was written at least once.
func (n *Node) HasSpec(s Spec) bool {
	if n == nil {
		return false
	}
	for _, x := range n.Specs {
		if x == s {
			return true
		}
	}
	return false
}
