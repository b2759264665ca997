package symbols

import (
	"strings"

	"c2c/internal/ast"
)

// Storage is the set of storage-class and function specifiers of a declaration.
type Storage uint8

const (
	StorageTypedef Storage = 1 << iota
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
	StorageInline
)

func (s Storage) Has(x Storage) bool { return s&x != 0 }

func (s Storage) IsExtern() bool   { return s.Has(StorageExtern) }
func (s Storage) IsStatic() bool   { return s.Has(StorageStatic) }
func (s Storage) IsAuto() bool     { return s.Has(StorageAuto) }
func (s Storage) IsRegister() bool { return s.Has(StorageRegister) }
func (s Storage) IsInline() bool   { return s.Has(StorageInline) }
func (s Storage) IsTypedef() bool  { return s.Has(StorageTypedef) }

// Multiple reports an invalid combination of storage classes. inline is a
// function specifier and combines with anything.
func (s Storage) Multiple() bool {
	switch {
	case s.IsTypedef():
		return s.Has(StorageExtern | StorageStatic | StorageAuto | StorageRegister)
	case s.IsExtern():
		return s.Has(StorageStatic | StorageAuto | StorageRegister)
	case s.IsStatic():
		return s.Has(StorageAuto | StorageRegister)
	}
	return s.IsAuto() && s.IsRegister()
}

// String renders the set the way symbol dumps show it: "extern inline",
// or "NO" for the empty set.
func (s Storage) String() string {
	var parts []string
	for _, it := range []struct {
		bit  Storage
		name string
	}{
		{StorageExtern, "extern"},
		{StorageInline, "inline"},
		{StorageStatic, "static"},
		{StorageRegister, "register"},
		{StorageAuto, "auto"},
	} {
		if s.Has(it.bit) {
			parts = append(parts, it.name)
		}
	}
	if len(parts) == 0 {
		return "NO"
	}
	return strings.Join(parts, " ")
}

// SpecResult is the outcome of folding written specifiers into a Storage.
type SpecResult struct {
	Storage    Storage
	Kernel     bool
	Duplicates []ast.Spec // specifiers written more than once
	Multiple   bool       // invalid combination of storage classes
}

// FromSpecs folds the specifiers of a declaration.
func FromSpecs(specs []ast.Spec) SpecResult {
	var res SpecResult
	for _, sp := range specs {
		var bit Storage
		switch sp {
		case ast.SpecTypedef:
			bit = StorageTypedef
		case ast.SpecExtern:
			bit = StorageExtern
		case ast.SpecStatic:
			bit = StorageStatic
		case ast.SpecAuto:
			bit = StorageAuto
		case ast.SpecRegister:
			bit = StorageRegister
		case ast.SpecInline:
			bit = StorageInline
		case ast.SpecKernel:
			if res.Kernel {
				res.Duplicates = append(res.Duplicates, sp)
			}
			res.Kernel = true
			continue
		default:
			continue
		}
		if res.Storage.Has(bit) {
			res.Duplicates = append(res.Duplicates, sp)
		}
		res.Storage |= bit
	}
	res.Multiple = res.Storage.Multiple()
	return res
}
