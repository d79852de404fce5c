package bytecode_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/modcache/bytecode"
	mcerrors "github.com/wippyai/modcache/errors"
)

func TestValidate_Valid(t *testing.T) {
	if err := sampleModule().Validate(); err != nil {
		t.Errorf("valid module failed validation: %v", err)
	}
}

func TestVerifyModule_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *bytecode.CompiledModule)
		want   string
	}{
		{
			name:   "missing self handle",
			mutate: func(m *bytecode.CompiledModule) { m.ModuleHandles = nil },
			want:   "missing self module handle",
		},
		{
			name:   "struct handle out of range in field",
			mutate: func(m *bytecode.CompiledModule) { m.TypeSignatures[1].Token = bytecode.Struct(40, bytecode.U64()) },
			want:   "struct handle 40 out of range",
		},
		{
			name:   "type argument arity",
			mutate: func(m *bytecode.CompiledModule) { m.TypeSignatures[1].Token = bytecode.Struct(0) },
			want:   "expects 1 type arguments, got 0",
		},
		{
			name:   "type parameter out of range",
			mutate: func(m *bytecode.CompiledModule) { m.TypeSignatures[0].Token = bytecode.TypeParameter(3) },
			want:   "type parameter 3 out of range",
		},
		{
			name:   "reference in field",
			mutate: func(m *bytecode.CompiledModule) { m.TypeSignatures[2].Token = bytecode.Reference(bytecode.U64()) },
			want:   "reference stored in a field",
		},
		{
			name: "reference to reference",
			mutate: func(m *bytecode.CompiledModule) {
				m.FunctionSignatures[1].ArgTypes[0] = bytecode.Reference(bytecode.Reference(bytecode.U64()))
			},
			want: "reference to reference",
		},
		{
			name:   "field range",
			mutate: func(m *bytecode.CompiledModule) { m.StructDefs[1].FieldCount = 9 },
			want:   "field range",
		},
		{
			name:   "native with fields",
			mutate: func(m *bytecode.CompiledModule) { m.StructDefs[0].Native = true },
			want:   "native struct declares fields",
		},
		{
			name:   "call target",
			mutate: func(m *bytecode.CompiledModule) { m.FunctionDefs[0].Code.Code[0] = bytecode.Call(77) },
			want:   "call target 77 out of range",
		},
		{
			name: "unknown opcode",
			mutate: func(m *bytecode.CompiledModule) {
				m.FunctionDefs[0].Code.Code[1] = bytecode.Instruction{Op: 200}
			},
			want: "unknown opcode",
		},
		{
			name: "foreign definition",
			mutate: func(m *bytecode.CompiledModule) {
				m.FunctionDefs = append(m.FunctionDefs, bytecode.FunctionDefinition{Function: 0})
			},
			want: "definition for a function of another module",
		},
		{
			name: "duplicate struct",
			mutate: func(m *bytecode.CompiledModule) {
				m.StructDefs = append(m.StructDefs, m.StructDefs[0])
			},
			want: "duplicate struct definition",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sampleModule()
			tt.mutate(m)
			vm, errs := bytecode.VerifyModule(m)
			if vm != nil {
				t.Fatal("expected verification failure")
			}
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			found := false
			for _, err := range errs {
				if !errors.Is(err, mcerrors.ErrVerification) {
					t.Errorf("error %v is not a verification error", err)
				}
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.want)
			}
		})
	}
}

func TestVerifyModule_ReportsEveryFinding(t *testing.T) {
	m := sampleModule()
	m.TypeSignatures[0].Token = bytecode.TypeParameter(5)
	m.FunctionDefs[0].Code.Code[0] = bytecode.Call(99)

	_, errs := bytecode.VerifyModule(m)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "field_defs.0") {
		t.Errorf("first error = %v, want the field finding first", errs[0])
	}
}

func TestVerifier_DecodeFailure(t *testing.T) {
	vm, errs := bytecode.Verifier{}.Verify([]byte("garbage"))
	if vm != nil || len(errs) != 1 {
		t.Fatalf("Verify(garbage) = %v, %v", vm, errs)
	}
	var e *mcerrors.Error
	if !errors.As(errs[0], &e) || e.Phase != mcerrors.PhaseDecode {
		t.Errorf("error = %v, want decode phase", errs[0])
	}
}

func TestVerifier_Success(t *testing.T) {
	raw := sampleModule().MustEncode()
	vm, errs := bytecode.Verifier{}.Verify(raw)
	if len(errs) != 0 {
		t.Fatalf("Verify: %v", errs)
	}
	if vm.SelfID().Name != "Sample" {
		t.Errorf("SelfID = %v", vm.SelfID())
	}
}

func TestBuilder_Interning(t *testing.T) {
	addr := bytecode.MustParseAddress("0x1")
	b := bytecode.NewModuleBuilder(addr, "M")
	h1 := b.ModuleHandle(addr, "Dep")
	h2 := b.ModuleHandle(addr, "Dep")
	if h1 != h2 || h1 != 1 {
		t.Errorf("ModuleHandle = %d, %d; want 1, 1", h1, h2)
	}
	s1 := b.StructHandle(h1, "S")
	s2 := b.StructHandle(h1, "S")
	if s1 != s2 {
		t.Errorf("StructHandle not interned: %d != %d", s1, s2)
	}
	m := b.Build()
	if len(m.AddressPool) != 1 {
		t.Errorf("AddressPool = %d entries, want 1", len(m.AddressPool))
	}
}
