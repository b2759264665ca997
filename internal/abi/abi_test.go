package abi

import (
	"math/big"
	"testing"
)

func TestLongTable(t *testing.T) {
	cases := []struct {
		dev         Device
		size, align int
	}{
		{DeviceC32, 4, 4},
		{DeviceC64, 8, 8},
		{DeviceOCL, 8, 4},
	}
	for _, tc := range cases {
		a := ForDevice(tc.dev)
		if got := a.SizeOf(Long); got != tc.size {
			t.Fatalf("%s: sizeof(long)=%d, want %d", tc.dev, got, tc.size)
		}
		if got := a.AlignOf(Long); got != tc.align {
			t.Fatalf("%s: alignof(long)=%d, want %d", tc.dev, got, tc.align)
		}
	}
}

func TestOpenCLRestrictions(t *testing.T) {
	a := ForDevice(DeviceOCL)
	if a.LongLongAllowed() || a.DoubleAllowed() || a.LongDoubleAllowed() {
		t.Fatalf("ocl profile must reject long long/double/long double")
	}
	if a.SizeOf(Pointer) != 4 {
		t.Fatalf("ocl pointer must be 32-bit, got %d", a.SizeOf(Pointer))
	}
	if a.SizeT != UInt {
		t.Fatalf("ocl size_t must be uint, got %s", a.SizeT)
	}
}

func TestPairForOpenCL(t *testing.T) {
	p := PairFor(DialectOpenCL, DeviceC64)
	if p.Source.Device != DeviceOCL || p.Target.Device != DeviceC64 {
		t.Fatalf("unexpected pair %s/%s", p.Source, p.Target)
	}
	q := PairFor(DialectC, DeviceC32)
	if q.Source != q.Target || q.Target.Device != DeviceC32 {
		t.Fatalf("C dialect must use the target ABI on both sides")
	}
	// two pairs never alias each other's selection
	if p.Target == q.Target {
		t.Fatalf("pairs for different devices must not share a target")
	}
}

func TestForDeviceUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown device")
		}
	}()
	ForDevice(DeviceUnknown)
}

func TestLimitsAndWrap(t *testing.T) {
	a := ForDevice(DeviceC64)
	if a.Max(Int).Int64() != 2147483647 || a.Min(Int).Int64() != -2147483648 {
		t.Fatalf("bad int limits: %s..%s", a.Min(Int), a.Max(Int))
	}
	if a.Max(UChar).Int64() != 255 {
		t.Fatalf("bad uchar max %s", a.Max(UChar))
	}
	if got := a.Wrap(Char, big.NewInt(200)).Int64(); got != -56 {
		t.Fatalf("wrap(char, 200)=%d, want -56", got)
	}
	if !a.Fits(UInt, big.NewInt(4294967295)) || a.Fits(Int, big.NewInt(4294967295)) {
		t.Fatalf("unexpected Fits results")
	}
}

func TestParseDevice(t *testing.T) {
	for in, want := range map[string]Device{"lp64": DeviceC64, "ILP32": DeviceC32, "opencl": DeviceOCL} {
		got, err := ParseDevice(in)
		if err != nil || got != want {
			t.Fatalf("ParseDevice(%q)=%v,%v", in, got, err)
		}
	}
	if _, err := ParseDevice("z80"); err == nil {
		t.Fatalf("expected error for unknown device")
	}
}
