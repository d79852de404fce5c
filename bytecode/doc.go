// Package bytecode defines the on-chain module format.
//
// A module is a set of tables: module, struct and function handles that name
// entities (possibly in other modules), identifier and address pools, type and
// function signatures, and the struct, field and function definitions the
// module itself declares. Every cross reference is a 16-bit table index.
// Module handle 0 always names the module being defined.
//
// # Binary Form
//
// The binary form is a four byte magic number, a format version byte and the
// msgpack encoding of CompiledModule:
//
//	data, err := module.Encode()
//	m, err := bytecode.ParseModule(data)
//
// # Verification
//
// ParseModule performs no checks beyond decoding. VerifyModule checks index
// bounds, generic arity, reference placement and duplicate definitions, and
// returns a VerifiedModule whose indices can be trusted:
//
//	vm, errs := bytecode.VerifyModule(m)
//	if len(errs) > 0 {
//	    return errs[0]
//	}
//
// # Building Modules
//
// ModuleBuilder assembles modules for tests and tooling:
//
//	b := bytecode.NewModuleBuilder(addr, "Box")
//	b.DefineStruct("Box", []bytecode.Kind{bytecode.KindAll},
//	    bytecode.Field("value", bytecode.TypeParameter(0)))
//	vm, err := b.BuildVerified()
package bytecode
