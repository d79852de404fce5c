package loader

import (
	"testing"

	"github.com/wippyai/modcache/bytecode"
)

var testAddr = bytecode.MustParseAddress("0x1")

var (
	idA      = bytecode.NewModuleID(testAddr, "A")
	idB      = bytecode.NewModuleID(testAddr, "B")
	idBox    = bytecode.NewModuleID(testAddr, "Box")
	idG      = bytecode.NewModuleID(testAddr, "G")
	idX      = bytecode.NewModuleID(testAddr, "X")
	idV      = bytecode.NewModuleID(testAddr, "V")
	idVector = bytecode.NewModuleID(bytecode.CoreAddress, "Vector")
)

// moduleB declares Bar{x} and a public function bar.
func moduleB(field bytecode.SignatureToken) *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "B")
	b.DefineStruct("Bar", nil, bytecode.Field("x", field))
	b.DefineFunction("bar", bytecode.FlagPublic, bytecode.FunctionSignature{}, bytecode.Ret())
	return b.Build()
}

// moduleA declares S{b: B::Bar} and foo, which calls B::bar.
func moduleA() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "A")
	mb := b.ModuleHandle(testAddr, "B")
	bar := b.StructHandle(mb, "Bar")
	barFn := b.FunctionHandle(mb, "bar", bytecode.FunctionSignature{})
	b.DefineStruct("S", nil, bytecode.Field("b", bytecode.Struct(bar)))
	b.DefineFunction("foo", bytecode.FlagPublic, bytecode.FunctionSignature{}, bytecode.Call(barFn), bytecode.Ret())
	return b.Build()
}

// moduleBox declares the generic T<T0>{value: T0} and make<T0>(T0): T<T0>.
func moduleBox() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "Box")
	sh, _ := b.DefineStruct("T", []bytecode.Kind{bytecode.KindAll}, bytecode.Field("value", bytecode.TypeParameter(0)))
	b.DefineFunction("make", bytecode.FlagPublic, bytecode.FunctionSignature{
		TypeFormals: []bytecode.Kind{bytecode.KindAll},
		ArgTypes:    []bytecode.SignatureToken{bytecode.TypeParameter(0)},
		ReturnTypes: []bytecode.SignatureToken{bytecode.Struct(sh, bytecode.TypeParameter(0))},
	}, bytecode.Ret())
	return b.Build()
}

// moduleG declares Holder{inner: Box::T<u64>} and Missing{m: Box::T<X::Y>}.
func moduleG() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "G")
	boxT := b.StructHandle(b.ModuleHandle(testAddr, "Box"), "T", bytecode.KindAll)
	y := b.StructHandle(b.ModuleHandle(testAddr, "X"), "Y")
	b.DefineStruct("Holder", nil, bytecode.Field("inner", bytecode.Struct(boxT, bytecode.U64())))
	b.DefineStruct("Missing", nil, bytecode.Field("m", bytecode.Struct(boxT, bytecode.Struct(y))))
	return b.Build()
}

func moduleX() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "X")
	b.DefineStruct("Y", nil, bytecode.Field("flag", bytecode.Bool()))
	return b.Build()
}

func moduleVector() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(bytecode.CoreAddress, "Vector")
	b.DefineNativeStruct("T", bytecode.KindAll)
	return b.Build()
}

// moduleV declares Bytes{v: Vector::T<u64>}.
func moduleV() *bytecode.CompiledModule {
	b := bytecode.NewModuleBuilder(testAddr, "V")
	vec := b.StructHandle(b.ModuleHandle(bytecode.CoreAddress, "Vector"), "T", bytecode.KindAll)
	b.DefineStruct("Bytes", nil, bytecode.Field("v", bytecode.Struct(vec, bytecode.U64())))
	return b.Build()
}

func verified(t *testing.T, m *bytecode.CompiledModule) *bytecode.VerifiedModule {
	t.Helper()
	v, errs := bytecode.VerifyModule(m)
	if len(errs) > 0 {
		t.Fatalf("verify %s: %v", m.SelfID(), errs)
	}
	return v
}

func fetcherWith(t *testing.T, mods ...*bytecode.CompiledModule) *FakeFetcher {
	t.Helper()
	f, err := NewFakeFetcher(mods...)
	if err != nil {
		t.Fatalf("NewFakeFetcher: %v", err)
	}
	return f
}

func mustLoad(t *testing.T, c ModuleCache, id bytecode.ModuleID) *LoadedModule {
	t.Helper()
	m, err := c.GetLoadedModule(id)
	if err != nil {
		t.Fatalf("GetLoadedModule(%s): %v", id, err)
	}
	if m == nil {
		t.Fatalf("GetLoadedModule(%s): not found", id)
	}
	return m
}

func structIndex(t *testing.T, m *LoadedModule, name string) bytecode.StructDefinitionIndex {
	t.Helper()
	idx, ok := m.StructDefIndex(name)
	if !ok {
		t.Fatalf("%s has no struct %q", m, name)
	}
	return idx
}

// callTarget returns the function handle of the first call in name's body.
func callTarget(t *testing.T, m *LoadedModule, name string) bytecode.FunctionHandleIndex {
	t.Helper()
	fdi, ok := m.FunctionDefIndex(name)
	if !ok {
		t.Fatalf("%s has no function %q", m, name)
	}
	for _, ins := range m.Function(fdi).Code().Code {
		if fh, ok := ins.CallTarget(); ok {
			return fh
		}
	}
	t.Fatalf("%s::%s makes no call", m, name)
	return 0
}
