package layout

import (
	"fortio.org/safecast"
	"modernc.org/mathutil"

	"c2c/internal/abi"
	"c2c/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
	}

	switch tt.Kind {
	case types.KindVoid:
		return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}

	case types.KindBool, types.KindInt, types.KindFloat, types.KindEnum:
		return e.scalar(id, tt.Scalar)

	case types.KindPointer, types.KindFunction:
		// a function designator is laid out as its address
		return e.scalar(id, abi.Pointer)

	case types.KindVector:
		elem, err := e.scalar(id, tt.Scalar)
		if err != nil {
			return TypeLayout{}, err
		}
		size := types.PhysicalWidth(int(tt.Count)) * elem.Size
		return TypeLayout{Size: size, Align: size}, nil

	case types.KindArray:
		if tt.Count == types.ArrayUnsized {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
		}
		elem, err := e.layoutOf(tt.Elem)
		if err != nil {
			return TypeLayout{}, err
		}
		n, convErr := safecast.Conv[int](tt.Count)
		if convErr != nil {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrLengthConversion, Type: id, Err: convErr}
		}
		return TypeLayout{Size: elem.Size * n, Align: elem.Align}, nil

	case types.KindStruct, types.KindUnion:
		info, _ := e.Types.Record(id)
		if !info.Complete {
			return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
		}
		return e.record(info)
	}
	return TypeLayout{}, &LayoutError{Kind: LayoutErrIncomplete, Type: id}
}

func (e *LayoutEngine) scalar(id types.TypeID, s abi.Scalar) (TypeLayout, *LayoutError) {
	entry := e.ABI.Of(s)
	if !entry.Supported() {
		return TypeLayout{}, &LayoutError{Kind: LayoutErrUnsupported, Type: id, Scalar: s, ABI: e.ABI.Name}
	}
	return TypeLayout{Size: entry.Size, Align: entry.Align}, nil
}

func (e *LayoutEngine) record(info types.RecordInfo) (TypeLayout, *LayoutError) {
	out := TypeLayout{Align: 1, FieldOffsets: make([]int, len(info.Fields))}
	offset := 0
	for i, f := range info.Fields {
		fl, err := e.layoutOf(f.Type)
		if err != nil {
			return TypeLayout{}, err
		}
		out.Align = mathutil.Max(out.Align, fl.Align)
		if info.Union {
			out.Size = mathutil.Max(out.Size, fl.Size)
			continue
		}
		offset = roundUp(offset, fl.Align)
		out.FieldOffsets[i] = offset
		offset += fl.Size
	}
	if !info.Union {
		out.Size = offset
	}
	out.Size = roundUp(out.Size, out.Align)
	return out, nil
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}
