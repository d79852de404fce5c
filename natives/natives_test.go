package natives

import (
	"testing"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/types"
)

func TestDefault(t *testing.T) {
	r := Default()
	ns, ok := r.Lookup(VectorModule, VectorStruct)
	if !ok {
		t.Fatal("vector not registered")
	}
	if ns.Tag != types.NativeVector || ns.Arity() != 1 {
		t.Errorf("vector = %+v", ns)
	}
	if Default() != r {
		t.Error("Default() not shared")
	}
}

func TestMapRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	id := bytecode.NewModuleID(bytecode.MustParseAddress("0x2"), "Table")
	r.Register(id, "T", &NativeStruct{Tag: types.NativeVector})

	tests := []struct {
		name   string
		module bytecode.ModuleID
		str    string
		ok     bool
	}{
		{"registered", id, "T", true},
		{"other name", id, "U", false},
		{"other module", VectorModule, "T", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := r.Lookup(tt.module, tt.str); ok != tt.ok {
				t.Errorf("Lookup(%v, %q) ok = %v, want %v", tt.module, tt.str, ok, tt.ok)
			}
		})
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestNativeStruct_Instantiate(t *testing.T) {
	ns := &NativeStruct{Tag: types.NativeVector, TypeFormals: []bytecode.Kind{bytecode.KindAll}}
	def := ns.Instantiate([]types.Type{types.U64()})
	if !def.IsNative() {
		t.Fatal("instantiated layout is not native")
	}
	if got := def.String(); got != "vector<u64>" {
		t.Errorf("String() = %q", got)
	}
}
