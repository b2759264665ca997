package layout

import (
	"fmt"

	"c2c/internal/abi"
	"c2c/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrIncomplete indicates a type with no fixed size yet.
	LayoutErrIncomplete LayoutErrorKind = iota + 1
	// LayoutErrUnsupported indicates a scalar the bound ABI does not provide.
	LayoutErrUnsupported
	LayoutErrLengthConversion
	// LayoutErrUnbound indicates a query before an ABI was bound.
	LayoutErrUnbound
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind   LayoutErrorKind
	Type   types.TypeID
	Scalar abi.Scalar // for LayoutErrUnsupported
	ABI    string     // for LayoutErrUnsupported
	Err    error      // for LayoutErrLengthConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrIncomplete:
		return fmt.Sprintf("incomplete type has no size (type#%d)", e.Type)
	case LayoutErrUnsupported:
		return fmt.Sprintf("'%s' is not supported by the %s abi (type#%d)", e.Scalar, e.ABI, e.Type)
	case LayoutErrLengthConversion:
		if e.Err != nil {
			return fmt.Sprintf("array length conversion error (type#%d): %v", e.Type, e.Err)
		}
		return fmt.Sprintf("array length conversion error (type#%d)", e.Type)
	case LayoutErrUnbound:
		return fmt.Sprintf("layout queried without a bound abi (type#%d)", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}
