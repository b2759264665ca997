package build

import (
	"c2c/internal/abi"
	"c2c/internal/symbols"
	"c2c/internal/types"
)

// builtinShape is the signature family of an OpenCL math builtin.
type builtinShape uint8

const (
	shapeVF      builtinShape = iota // gentype f(gentype)
	shapeVFVF                        // gentype f(gentype, gentype)
	shapeVFVFVF                      // gentype f(gentype, gentype, gentype)
	shapeGeoF                        // float f(floatn), n <= 4
	shapeGeoVFVF                     // float f(floatn, floatn), n <= 4
	shapeGeoVF                       // floatn f(floatn), n <= 4
)

var mathBuiltins = []struct {
	name  string
	shape builtinShape
}{
	{"acos", shapeVF}, {"acosh", shapeVF}, {"asin", shapeVF}, {"asinh", shapeVF},
	{"atan", shapeVF}, {"atanh", shapeVF}, {"cbrt", shapeVF}, {"ceil", shapeVF},
	{"cos", shapeVF}, {"cosh", shapeVF}, {"erf", shapeVF}, {"erfc", shapeVF},
	{"exp", shapeVF}, {"exp2", shapeVF}, {"expm1", shapeVF}, {"fabs", shapeVF},
	{"floor", shapeVF}, {"log", shapeVF}, {"log2", shapeVF}, {"log10", shapeVF},
	{"log1p", shapeVF}, {"logb", shapeVF}, {"rint", shapeVF}, {"round", shapeVF},
	{"sin", shapeVF}, {"sinh", shapeVF}, {"sqrt", shapeVF}, {"tan", shapeVF},
	{"tanh", shapeVF}, {"tgamma", shapeVF}, {"trunc", shapeVF},
	{"degrees", shapeVF}, {"radians", shapeVF}, {"sign", shapeVF},

	{"atan2", shapeVFVF}, {"copysign", shapeVFVF}, {"fdim", shapeVFVF},
	{"fmax", shapeVFVF}, {"fmin", shapeVFVF}, {"nextafter", shapeVFVF},
	{"pow", shapeVFVF}, {"powr", shapeVFVF}, {"remainder", shapeVFVF},

	{"fma", shapeVFVFVF},

	{"length", shapeGeoF}, {"fast_length", shapeGeoF},
	{"dot", shapeGeoVFVF}, {"distance", shapeGeoVFVF}, {"fast_distance", shapeGeoVFVF},
	{"normalize", shapeGeoVF}, {"fast_normalize", shapeGeoVF},
}

// workItemBuiltins take a dimension index and return a size_t.
var workItemBuiltins = []string{
	"get_global_id", "get_local_id", "get_group_id",
	"get_global_size", "get_local_size", "get_num_groups",
}

// declareBuiltins registers the OpenCL builtin functions in the top scope.
// Math functions form mangled overload sets over the float vector widths.
func (b *builder) declareBuiltins() {
	in := b.env.Types
	bt := in.Builtins()
	sizeT := in.Scalar(b.env.Folder.ABI.SizeT)

	external := func(name string, info types.FuncInfo) {
		sym := b.tab.NewSymbol(symbols.KindFunction, name, symbols.StorageExtern, in.Func(info), symbols.Site{})
		sym.Function.ExternalBuiltin = true
		b.tab.Add(sym)
	}
	for _, name := range workItemBuiltins {
		external(name, types.FuncInfo{Result: sizeT, Params: []types.TypeID{bt.UInt}})
	}
	external("get_work_dim", types.FuncInfo{Result: bt.UInt, VoidList: true})
	external("barrier", types.FuncInfo{Result: bt.Void, Params: []types.TypeID{bt.UInt}})

	for _, mb := range mathBuiltins {
		widths := []int{1, 2, 3, 4, 8, 16}
		if mb.shape >= shapeGeoF {
			widths = widths[:4]
		}
		for _, w := range widths {
			gen := bt.Float
			if w > 1 {
				gen, _ = in.VectorOf(abi.Float, w)
			}
			var info types.FuncInfo
			switch mb.shape {
			case shapeVF:
				info = types.FuncInfo{Result: gen, Params: []types.TypeID{gen}}
			case shapeVFVF:
				info = types.FuncInfo{Result: gen, Params: []types.TypeID{gen, gen}}
			case shapeVFVFVF:
				info = types.FuncInfo{Result: gen, Params: []types.TypeID{gen, gen, gen}}
			case shapeGeoF:
				info = types.FuncInfo{Result: bt.Float, Params: []types.TypeID{gen}}
			case shapeGeoVFVF:
				info = types.FuncInfo{Result: bt.Float, Params: []types.TypeID{gen, gen}}
			case shapeGeoVF:
				info = types.FuncInfo{Result: gen, Params: []types.TypeID{gen}}
			}
			sym := b.tab.NewSymbol(symbols.KindFunction, mb.name, symbols.StorageExtern, in.Func(info), symbols.Site{})
			sym.Function.CompilerBuiltin = true
			sym.Function.Mangled = true
			b.tab.Add(sym)
		}
	}
}
