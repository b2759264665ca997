package abi

import (
	"fmt"
	"strings"
)

// Device identifies a closed set of device profiles.
type Device uint8

const (
	DeviceUnknown Device = iota
	DeviceC32            // ILP32 C host
	DeviceC64            // LP64 C host
	DeviceOCL            // restricted OpenCL kernel profile
)

func (d Device) String() string {
	switch d {
	case DeviceC32:
		return "ilp32"
	case DeviceC64:
		return "lp64"
	case DeviceOCL:
		return "ocl"
	default:
		return fmt.Sprintf("Device(%d)", d)
	}
}

// ParseDevice maps a user-facing name to a device.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ilp32", "c32", "32":
		return DeviceC32, nil
	case "lp64", "c64", "64", "":
		return DeviceC64, nil
	case "ocl", "opencl":
		return DeviceOCL, nil
	}
	return DeviceUnknown, fmt.Errorf("unknown device %q", s)
}

var (
	ilp32 = build(DeviceC32, "ilp32", map[Scalar]Entry{
		Bool: {1, 1}, Char: {1, 1}, SChar: {1, 1}, UChar: {1, 1},
		Short: {2, 2}, UShort: {2, 2},
		Int: {4, 4}, UInt: {4, 4},
		Long: {4, 4}, ULong: {4, 4},
		LongLong: {8, 4}, ULongLong: {8, 4},
		Float: {4, 4}, Double: {8, 4}, LongDouble: {12, 4},
		Pointer: {4, 4},
	}, UInt, Int, Int, UInt)

	lp64 = build(DeviceC64, "lp64", map[Scalar]Entry{
		Bool: {1, 1}, Char: {1, 1}, SChar: {1, 1}, UChar: {1, 1},
		Short: {2, 2}, UShort: {2, 2},
		Int: {4, 4}, UInt: {4, 4},
		Long: {8, 8}, ULong: {8, 8},
		LongLong: {8, 8}, ULongLong: {8, 8},
		Float: {4, 4}, Double: {8, 8}, LongDouble: {16, 16},
		Pointer: {8, 8},
	}, ULong, Long, Long, ULong)

	// long is 64-bit but only 4-byte aligned; no long long / double / long double.
	ocl = build(DeviceOCL, "ocl", map[Scalar]Entry{
		Bool: {1, 1}, Char: {1, 1}, SChar: {1, 1}, UChar: {1, 1},
		Short: {2, 2}, UShort: {2, 2},
		Int: {4, 4}, UInt: {4, 4},
		Long: {8, 4}, ULong: {8, 4},
		LongLong: {-1, 8}, ULongLong: {-1, 8},
		Float: {4, 4}, Double: {-1, 8}, LongDouble: {-1, 4},
		Pointer: {4, 4},
	}, UInt, Int, Int, UInt)
)

func build(dev Device, name string, entries map[Scalar]Entry, sizeT, ptrdiffT, intptrT, uintptrT Scalar) *ABI {
	a := &ABI{Device: dev, Name: name, SizeT: sizeT, PtrdiffT: ptrdiffT, IntptrT: intptrT, UintptrT: uintptrT}
	for s := range a.entries {
		a.entries[s] = Entry{Size: -1, Align: -1}
	}
	for s, e := range entries {
		a.entries[s] = e
	}
	return a
}

// Lookup returns the table of a device.
func Lookup(dev Device) (*ABI, bool) {
	switch dev {
	case DeviceC32:
		return ilp32, true
	case DeviceC64:
		return lp64, true
	case DeviceOCL:
		return ocl, true
	}
	return nil, false
}

// ForDevice returns the table of a device. Devices form a closed set, so an
// unknown one is an internal error of the caller and panics.
func ForDevice(dev Device) *ABI {
	a, ok := Lookup(dev)
	if !ok {
		panic(fmt.Sprintf("abi: unknown device %d", dev))
	}
	return a
}

// Dialect is the source language flavour.
type Dialect uint8

const (
	DialectC Dialect = iota
	DialectOpenCL
)

func (d Dialect) String() string {
	if d == DialectOpenCL {
		return "opencl"
	}
	return "c"
}

// ParseDialect maps a user-facing name to a dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "c99", "c11":
		return DialectC, nil
	case "opencl", "ocl", "cl":
		return DialectOpenCL, nil
	}
	return DialectC, fmt.Errorf("unknown dialect %q", s)
}

// Pair is the source/target binding of one compiler instance.
// Each instance owns its own Pair value.
type Pair struct {
	Source *ABI
	Target *ABI
}

// PairFor selects the ABI pair: OpenCL sources always use the restricted
// kernel ABI, the target follows the selected device.
func PairFor(dialect Dialect, target Device) Pair {
	t := ForDevice(target)
	if dialect == DialectOpenCL {
		return Pair{Source: ocl, Target: t}
	}
	return Pair{Source: t, Target: t}
}
