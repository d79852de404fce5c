package bytecode

import (
	"fmt"

	"fortio.org/safecast"
)

// ModuleBuilder assembles a CompiledModule table by table.
// Names, addresses and module handles are interned.
type ModuleBuilder struct {
	m         CompiledModule
	idents    map[string]IdentifierIndex
	addrs     map[Address]AddressPoolIndex
	modules   map[ModuleID]ModuleHandleIndex
	structs   map[structKey]StructHandleIndex
	functions map[functionKey]FunctionHandleIndex
}

type structKey struct {
	module ModuleHandleIndex
	name   string
}

type functionKey struct {
	module ModuleHandleIndex
	name   string
}

// FieldSpec declares one field of a struct.
type FieldSpec struct {
	Name string
	Type SignatureToken
}

// Field is shorthand for a FieldSpec.
func Field(name string, tok SignatureToken) FieldSpec {
	return FieldSpec{Name: name, Type: tok}
}

// NewModuleBuilder starts a module published as addr::name.
func NewModuleBuilder(addr Address, name string) *ModuleBuilder {
	b := &ModuleBuilder{
		idents:    make(map[string]IdentifierIndex),
		addrs:     make(map[Address]AddressPoolIndex),
		modules:   make(map[ModuleID]ModuleHandleIndex),
		structs:   make(map[structKey]StructHandleIndex),
		functions: make(map[functionKey]FunctionHandleIndex),
	}
	b.ModuleHandle(addr, name)
	return b
}

func next[T ~uint16](n int, table string) T {
	v, err := safecast.Conv[uint16](n)
	if err != nil {
		panic(fmt.Errorf("%s table overflow: %w", table, err))
	}
	return T(v)
}

func (b *ModuleBuilder) identifier(s string) IdentifierIndex {
	if i, ok := b.idents[s]; ok {
		return i
	}
	i := next[IdentifierIndex](len(b.m.Identifiers), "identifiers")
	b.m.Identifiers = append(b.m.Identifiers, s)
	b.idents[s] = i
	return i
}

func (b *ModuleBuilder) address(a Address) AddressPoolIndex {
	if i, ok := b.addrs[a]; ok {
		return i
	}
	i := next[AddressPoolIndex](len(b.m.AddressPool), "address_pool")
	b.m.AddressPool = append(b.m.AddressPool, a)
	b.addrs[a] = i
	return i
}

// ModuleHandle returns the handle for addr::name, adding it if needed.
func (b *ModuleBuilder) ModuleHandle(addr Address, name string) ModuleHandleIndex {
	id := ModuleID{Address: addr, Name: name}
	if i, ok := b.modules[id]; ok {
		return i
	}
	i := next[ModuleHandleIndex](len(b.m.ModuleHandles), "module_handles")
	b.m.ModuleHandles = append(b.m.ModuleHandles, ModuleHandle{
		Address: b.address(addr),
		Name:    b.identifier(name),
	})
	b.modules[id] = i
	return i
}

// StructHandle returns a handle for a struct declared in module, adding it if needed.
func (b *ModuleBuilder) StructHandle(module ModuleHandleIndex, name string, formals ...Kind) StructHandleIndex {
	key := structKey{module: module, name: name}
	if i, ok := b.structs[key]; ok {
		return i
	}
	i := next[StructHandleIndex](len(b.m.StructHandles), "struct_handles")
	b.m.StructHandles = append(b.m.StructHandles, StructHandle{
		Module:      module,
		Name:        b.identifier(name),
		TypeFormals: formals,
	})
	b.structs[key] = i
	return i
}

// FunctionHandle returns a handle for a function declared in module, adding it if needed.
func (b *ModuleBuilder) FunctionHandle(module ModuleHandleIndex, name string, sig FunctionSignature) FunctionHandleIndex {
	key := functionKey{module: module, name: name}
	if i, ok := b.functions[key]; ok {
		return i
	}
	i := next[FunctionHandleIndex](len(b.m.FunctionHandles), "function_handles")
	b.m.FunctionHandles = append(b.m.FunctionHandles, FunctionHandle{
		Module:    module,
		Name:      b.identifier(name),
		Signature: b.functionSignature(sig),
	})
	b.functions[key] = i
	return i
}

func (b *ModuleBuilder) functionSignature(sig FunctionSignature) FunctionSignatureIndex {
	i := next[FunctionSignatureIndex](len(b.m.FunctionSignatures), "function_signatures")
	b.m.FunctionSignatures = append(b.m.FunctionSignatures, sig)
	return i
}

// DefineStruct declares a struct with fields in this module.
func (b *ModuleBuilder) DefineStruct(name string, formals []Kind, fields ...FieldSpec) (StructHandleIndex, StructDefinitionIndex) {
	sh := b.StructHandle(SelfModuleHandleIndex, name, formals...)
	first := next[FieldDefinitionIndex](len(b.m.FieldDefs), "field_defs")
	for _, f := range fields {
		sig := next[TypeSignatureIndex](len(b.m.TypeSignatures), "type_signatures")
		b.m.TypeSignatures = append(b.m.TypeSignatures, TypeSignature{Token: f.Type})
		b.m.FieldDefs = append(b.m.FieldDefs, FieldDefinition{
			Struct:    sh,
			Name:      b.identifier(f.Name),
			Signature: sig,
		})
	}
	sd := next[StructDefinitionIndex](len(b.m.StructDefs), "struct_defs")
	b.m.StructDefs = append(b.m.StructDefs, StructDefinition{
		StructHandle: sh,
		FieldCount:   next[uint16](len(fields), "field_defs"),
		Fields:       first,
	})
	return sh, sd
}

// DefineNativeStruct declares a struct whose layout the host provides.
func (b *ModuleBuilder) DefineNativeStruct(name string, formals ...Kind) (StructHandleIndex, StructDefinitionIndex) {
	sh := b.StructHandle(SelfModuleHandleIndex, name, formals...)
	sd := next[StructDefinitionIndex](len(b.m.StructDefs), "struct_defs")
	b.m.StructDefs = append(b.m.StructDefs, StructDefinition{
		StructHandle: sh,
		Native:       true,
	})
	return sh, sd
}

// DefineFunction declares a function in this module.
func (b *ModuleBuilder) DefineFunction(name string, flags FunctionFlags, sig FunctionSignature, code ...Instruction) (FunctionHandleIndex, FunctionDefinitionIndex) {
	fh := b.FunctionHandle(SelfModuleHandleIndex, name, sig)
	fd := next[FunctionDefinitionIndex](len(b.m.FunctionDefs), "function_defs")
	b.m.FunctionDefs = append(b.m.FunctionDefs, FunctionDefinition{
		Function: fh,
		Flags:    flags,
		Code:     CodeUnit{Code: code},
	})
	return fh, fd
}

// Build returns the assembled module. The builder must not be reused.
func (b *ModuleBuilder) Build() *CompiledModule {
	m := b.m
	return &m
}

// BuildVerified builds and verifies the module, returning the first finding on failure.
func (b *ModuleBuilder) BuildVerified() (*VerifiedModule, error) {
	vm, errs := VerifyModule(b.Build())
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return vm, nil
}
