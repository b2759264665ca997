package layout_test

import (
	"errors"
	"testing"

	"c2c/internal/abi"
	"c2c/internal/layout"
	"c2c/internal/types"
)

func TestScalarAndVectorLayout(t *testing.T) {
	in := types.NewInterner()
	eng := layout.New(abi.ForDevice(abi.DeviceC64), in)

	f3, err := in.VectorOf(abi.Float, 3)
	if err != nil {
		t.Fatalf("VectorOf: %v", err)
	}
	size, err := eng.SizeOf(f3)
	if err != nil || size != 16 {
		t.Fatalf("sizeof(float3)=%d,%v want 16", size, err)
	}
	align, _ := eng.AlignOf(f3)
	if align != 16 {
		t.Fatalf("alignof(float3)=%d want 16", align)
	}

	arr := in.ArrayOf(in.Builtins().Long, 3)
	if size, _ := eng.SizeOf(arr); size != 24 {
		t.Fatalf("sizeof(long[3])=%d want 24", size)
	}
}

func TestStructLayoutAndCompletion(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	eng := layout.New(abi.ForDevice(abi.DeviceC64), in)

	s := in.RegisterRecord(false, "S")
	_, err := eng.SizeOf(s)
	var le *layout.LayoutError
	if !errors.As(err, &le) || le.Kind != layout.LayoutErrIncomplete {
		t.Fatalf("expected incomplete error, got %v", err)
	}

	in.CompleteRecord(s, []types.Field{{Name: "c", Type: b.Char}, {Name: "l", Type: b.Long}, {Name: "i", Type: b.Int}})
	l, err := eng.LayoutOf(s)
	if err != nil {
		t.Fatalf("LayoutOf after completion: %v", err)
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("unexpected struct layout %+v", l)
	}
	if off, _ := eng.FieldOffset(s, 1); off != 8 {
		t.Fatalf("offset of l = %d want 8", off)
	}
	if off, _ := eng.FieldOffset(s, 2); off != 16 {
		t.Fatalf("offset of i = %d want 16", off)
	}
}

func TestUnsupportedOnKernelABI(t *testing.T) {
	in := types.NewInterner()
	eng := layout.New(abi.ForDevice(abi.DeviceOCL), in)
	_, err := eng.SizeOf(in.Builtins().Double)
	var le *layout.LayoutError
	if !errors.As(err, &le) || le.Kind != layout.LayoutErrUnsupported {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if size, _ := eng.SizeOf(in.Builtins().VoidPtr); size != 4 {
		t.Fatalf("ocl pointer size = %d want 4", size)
	}
	if a, _ := eng.AlignOf(in.Builtins().Long); a != 4 {
		t.Fatalf("ocl long align = %d want 4", a)
	}
}

func TestUnsizedArrayHasNoSize(t *testing.T) {
	in := types.NewInterner()
	eng := layout.New(abi.ForDevice(abi.DeviceC32), in)
	if _, err := eng.SizeOf(in.ArrayOf(in.Builtins().Int, types.ArrayUnsized)); err == nil {
		t.Fatalf("unsized array must not have a size")
	}
}
