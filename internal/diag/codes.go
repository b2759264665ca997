package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Входные данные (деревья модулей, опции)
	InputInfo             Code = 1000
	InputBadTree          Code = 1001
	InputUnsupportedTree  Code = 1002
	InputUnknownDevice    Code = 1003
	InputBadOption        Code = 1004
	InputCannotOpenModule Code = 1005

	// Declarations (symbol-table construction)
	DeclInfo                 Code = 3000
	DeclDuplicateSpecifier   Code = 3001
	DeclMultipleStorage      Code = 3002
	DeclRedeclared           Code = 3003
	DeclConflictingTypes     Code = 3004
	DeclConflictingStorage   Code = 3005
	DeclDifferentSymbol      Code = 3006
	DeclFunctionRedefinition Code = 3007
	DeclBuiltinRedefinition  Code = 3008
	DeclManglingMismatch     Code = 3009
	DeclUndeclared           Code = 3010
	DeclUnknownType          Code = 3011
	DeclTypeNotSupported     Code = 3012
	DeclTagRedefinition      Code = 3013
	DeclIncompleteType       Code = 3014
	DeclBadVectorWidth       Code = 3015
	DeclBadVectorElement     Code = 3016
	DeclNoMatchingOverload   Code = 3017
	DeclBadInitializer       Code = 3018
	DeclDivisionByZero       Code = 3019
	DeclNotConstant          Code = 3020
	DeclInvalidOperands      Code = 3021
	DeclUnknownMember        Code = 3022
	DeclBadAttribute         Code = 3023

	// Link
	LinkInfo               Code = 4000
	LinkMultipleDefinition Code = 4001
	LinkConflictingTypes   Code = 4002
	LinkUnresolved         Code = 4003
	LinkNoInstanceOwner    Code = 4004

	// Output / resources
	OutputCannotWrite Code = 5001
	OutputCleanup     Code = 5002

	// Abort path
	InternalError Code = 9000
	FatalError    Code = 9001
	TooManyErrors Code = 9002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		InputInfo:                "Input information",
		InputBadTree:             "Malformed syntax tree",
		InputUnsupportedTree:     "Unsupported syntax tree producer",
		InputUnknownDevice:       "Unknown target device",
		InputBadOption:           "Invalid option",
		InputCannotOpenModule:    "Cannot open module",
		DeclInfo:                 "Declaration information",
		DeclDuplicateSpecifier:   "Duplicate storage-class specifier",
		DeclMultipleStorage:      "Multiple storage classes in declaration",
		DeclRedeclared:           "Redeclaration",
		DeclConflictingTypes:     "Conflicting types",
		DeclConflictingStorage:   "Conflicting storage classes",
		DeclDifferentSymbol:      "Redeclared as a different kind of symbol",
		DeclFunctionRedefinition: "Function redefinition",
		DeclBuiltinRedefinition:  "Builtin function redefinition",
		DeclManglingMismatch:     "Mangled and non-mangled declarations mixed",
		DeclUndeclared:           "Undeclared identifier",
		DeclUnknownType:          "Unknown type name",
		DeclTypeNotSupported:     "Type not supported by the source ABI",
		DeclTagRedefinition:      "Tag redefinition",
		DeclIncompleteType:       "Incomplete type",
		DeclBadVectorWidth:       "Invalid vector width",
		DeclBadVectorElement:     "Invalid vector element selection",
		DeclNoMatchingOverload:   "No matching overload",
		DeclBadInitializer:       "Invalid initializer",
		DeclDivisionByZero:       "Division by zero in constant expression",
		DeclNotConstant:          "Expression is not a compile-time constant",
		DeclInvalidOperands:      "Invalid operands",
		DeclUnknownMember:        "No such member",
		DeclBadAttribute:         "Invalid attribute",
		LinkInfo:                 "Link information",
		LinkMultipleDefinition:   "Multiple definition",
		LinkConflictingTypes:     "Conflicting program-scope declarations",
		LinkUnresolved:           "Unresolved external reference",
		LinkNoInstanceOwner:      "Extern declaration without instance data owner",
		OutputCannotWrite:        "Cannot write output",
		OutputCleanup:            "Resource cleanup failed",
		InternalError:            "Internal error",
		FatalError:               "Fatal error",
		TooManyErrors:            "Too many errors",
	}
)

func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic == 0:
		return "E0000"
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("INP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNK%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("OUT%04d", ic)
	case ic >= 9000:
		return fmt.Sprintf("ABT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
