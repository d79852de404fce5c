package bytecode

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/modcache/errors"
)

// Validate checks the module for structural validity.
// Every finding is reported; use multierr.Errors to split the result.
func (m *CompiledModule) Validate() error {
	if err := m.validateTableSizes(); err != nil {
		return err
	}
	if len(m.ModuleHandles) == 0 {
		return errors.Verification([]string{"module_handles"}, "missing self module handle")
	}

	var err error
	err = multierr.Append(err, m.validateModuleHandles())
	err = multierr.Append(err, m.validateStructHandles())
	err = multierr.Append(err, m.validateFunctionHandles())
	err = multierr.Append(err, m.validateFunctionSignatures())
	err = multierr.Append(err, m.validateStructDefs())
	err = multierr.Append(err, m.validateFieldDefs())
	err = multierr.Append(err, m.validateFunctionDefs())
	err = multierr.Append(err, m.validateDuplicateNames())
	return err
}

func verr(detail string, path ...string) error {
	return errors.Verification(path, detail)
}

func idx(i int) string {
	return strconv.Itoa(i)
}

// sub extends path without aliasing the caller's backing array.
func sub(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}

func (m *CompiledModule) validateTableSizes() error {
	sizes := []struct {
		name string
		n    int
	}{
		{"module_handles", len(m.ModuleHandles)},
		{"struct_handles", len(m.StructHandles)},
		{"function_handles", len(m.FunctionHandles)},
		{"type_signatures", len(m.TypeSignatures)},
		{"function_signatures", len(m.FunctionSignatures)},
		{"identifiers", len(m.Identifiers)},
		{"address_pool", len(m.AddressPool)},
		{"struct_defs", len(m.StructDefs)},
		{"field_defs", len(m.FieldDefs)},
		{"function_defs", len(m.FunctionDefs)},
	}
	for _, s := range sizes {
		if s.n > MaxTableSize {
			return verr(fmt.Sprintf("table has %d entries (max %d)", s.n, MaxTableSize), s.name)
		}
	}
	return nil
}

func (m *CompiledModule) validateModuleHandles() error {
	var err error
	seen := make(map[ModuleID]int, len(m.ModuleHandles))
	for i, h := range m.ModuleHandles {
		if int(h.Address) >= len(m.AddressPool) {
			err = multierr.Append(err, verr(fmt.Sprintf("address index %d out of range", h.Address), "module_handles", idx(i)))
			continue
		}
		if int(h.Name) >= len(m.Identifiers) {
			err = multierr.Append(err, verr(fmt.Sprintf("identifier index %d out of range", h.Name), "module_handles", idx(i)))
			continue
		}
		id := ModuleID{Address: m.AddressPool[h.Address], Name: m.Identifiers[h.Name]}
		if prev, dup := seen[id]; dup {
			err = multierr.Append(err, verr(fmt.Sprintf("duplicate handle for %s (first at %d)", id, prev), "module_handles", idx(i)))
			continue
		}
		seen[id] = i
	}
	return err
}

func (m *CompiledModule) validateStructHandles() error {
	var err error
	for i, h := range m.StructHandles {
		if int(h.Module) >= len(m.ModuleHandles) {
			err = multierr.Append(err, verr(fmt.Sprintf("module handle %d out of range", h.Module), "struct_handles", idx(i)))
		}
		if int(h.Name) >= len(m.Identifiers) {
			err = multierr.Append(err, verr(fmt.Sprintf("identifier index %d out of range", h.Name), "struct_handles", idx(i)))
		}
	}
	return err
}

func (m *CompiledModule) validateFunctionHandles() error {
	var err error
	for i, h := range m.FunctionHandles {
		if int(h.Module) >= len(m.ModuleHandles) {
			err = multierr.Append(err, verr(fmt.Sprintf("module handle %d out of range", h.Module), "function_handles", idx(i)))
		}
		if int(h.Name) >= len(m.Identifiers) {
			err = multierr.Append(err, verr(fmt.Sprintf("identifier index %d out of range", h.Name), "function_handles", idx(i)))
		}
		if int(h.Signature) >= len(m.FunctionSignatures) {
			err = multierr.Append(err, verr(fmt.Sprintf("function signature %d out of range", h.Signature), "function_handles", idx(i)))
		}
	}
	return err
}

func (m *CompiledModule) validateFunctionSignatures() error {
	var err error
	for i, sig := range m.FunctionSignatures {
		arity := len(sig.TypeFormals)
		for j, tok := range sig.ArgTypes {
			err = multierr.Append(err, m.validateToken(tok, arity, "function_signatures", idx(i), "args", idx(j)))
		}
		for j, tok := range sig.ReturnTypes {
			err = multierr.Append(err, m.validateToken(tok, arity, "function_signatures", idx(i), "returns", idx(j)))
		}
	}
	return err
}

// validateToken checks handle bounds, generic arity and reference nesting of a token
// used in a declaration with arity type formals.
func (m *CompiledModule) validateToken(tok SignatureToken, arity int, path ...string) error {
	switch tok.Kind {
	case TokenBool, TokenU64, TokenString, TokenByteArray, TokenAddress:
		return nil
	case TokenTypeParameter:
		if int(tok.TypeParam) >= arity {
			return verr(fmt.Sprintf("type parameter %d out of range (arity %d)", tok.TypeParam, arity), path...)
		}
		return nil
	case TokenStruct:
		if int(tok.Struct) >= len(m.StructHandles) {
			return verr(fmt.Sprintf("struct handle %d out of range", tok.Struct), path...)
		}
		want := len(m.StructHandles[tok.Struct].TypeFormals)
		if len(tok.TypeArgs) != want {
			return verr(fmt.Sprintf("struct handle %d expects %d type arguments, got %d", tok.Struct, want, len(tok.TypeArgs)), path...)
		}
		var err error
		for i, a := range tok.TypeArgs {
			if a.Kind == TokenReference || a.Kind == TokenMutableReference {
				err = multierr.Append(err, verr("reference used as type argument", sub(path, "type_args", idx(i))...))
				continue
			}
			err = multierr.Append(err, m.validateToken(a, arity, sub(path, "type_args", idx(i))...))
		}
		return err
	case TokenReference, TokenMutableReference:
		if tok.Inner == nil {
			return verr("reference without inner type", path...)
		}
		if tok.Inner.Kind == TokenReference || tok.Inner.Kind == TokenMutableReference {
			return verr("reference to reference", path...)
		}
		return m.validateToken(*tok.Inner, arity, path...)
	default:
		return verr(fmt.Sprintf("invalid signature token kind %d", tok.Kind), path...)
	}
}

func (m *CompiledModule) validateStructDefs() error {
	var err error
	for i, def := range m.StructDefs {
		p := []string{"struct_defs", idx(i)}
		if int(def.StructHandle) >= len(m.StructHandles) {
			err = multierr.Append(err, verr(fmt.Sprintf("struct handle %d out of range", def.StructHandle), p...))
			continue
		}
		if m.StructHandles[def.StructHandle].Module != SelfModuleHandleIndex {
			err = multierr.Append(err, verr("definition for a struct of another module", p...))
		}
		if def.Native {
			if def.FieldCount != 0 {
				err = multierr.Append(err, verr("native struct declares fields", p...))
			}
			continue
		}
		end := int(def.Fields) + int(def.FieldCount)
		if end > len(m.FieldDefs) {
			err = multierr.Append(err, verr(fmt.Sprintf("field range [%d, %d) out of range (%d fields)", def.Fields, end, len(m.FieldDefs)), p...))
			continue
		}
		for j := int(def.Fields); j < end; j++ {
			if m.FieldDefs[j].Struct != def.StructHandle {
				err = multierr.Append(err, verr(fmt.Sprintf("field %d belongs to struct handle %d", j, m.FieldDefs[j].Struct), p...))
			}
		}
	}
	return err
}

func (m *CompiledModule) validateFieldDefs() error {
	var err error
	for i, f := range m.FieldDefs {
		p := []string{"field_defs", idx(i)}
		if int(f.Name) >= len(m.Identifiers) {
			err = multierr.Append(err, verr(fmt.Sprintf("identifier index %d out of range", f.Name), p...))
		}
		if int(f.Struct) >= len(m.StructHandles) {
			err = multierr.Append(err, verr(fmt.Sprintf("struct handle %d out of range", f.Struct), p...))
			continue
		}
		if int(f.Signature) >= len(m.TypeSignatures) {
			err = multierr.Append(err, verr(fmt.Sprintf("type signature %d out of range", f.Signature), p...))
			continue
		}
		tok := m.TypeSignatures[f.Signature].Token
		if tok.Kind == TokenReference || tok.Kind == TokenMutableReference {
			err = multierr.Append(err, verr("reference stored in a field", p...))
			continue
		}
		arity := len(m.StructHandles[f.Struct].TypeFormals)
		err = multierr.Append(err, m.validateToken(tok, arity, p...))
	}
	return err
}

func (m *CompiledModule) validateFunctionDefs() error {
	var err error
	for i, def := range m.FunctionDefs {
		p := []string{"function_defs", idx(i)}
		if int(def.Function) >= len(m.FunctionHandles) {
			err = multierr.Append(err, verr(fmt.Sprintf("function handle %d out of range", def.Function), p...))
			continue
		}
		if m.FunctionHandles[def.Function].Module != SelfModuleHandleIndex {
			err = multierr.Append(err, verr("definition for a function of another module", p...))
		}
		if def.IsNative() {
			if len(def.Code.Code) != 0 {
				err = multierr.Append(err, verr("native function has a body", p...))
			}
			continue
		}
		err = multierr.Append(err, m.validateCode(def.Code, p))
	}
	return err
}

func (m *CompiledModule) validateCode(code CodeUnit, path []string) error {
	var err error
	n := uint64(len(code.Code))
	for pc, ins := range code.Code {
		p := sub(path, "code", idx(pc))
		switch ins.Op {
		case OpCall:
			if ins.Arg >= uint64(len(m.FunctionHandles)) {
				err = multierr.Append(err, verr(fmt.Sprintf("call target %d out of range", ins.Arg), p...))
			}
		case OpPack, OpUnpack:
			if ins.Arg >= uint64(len(m.StructDefs)) {
				err = multierr.Append(err, verr(fmt.Sprintf("struct definition %d out of range", ins.Arg), p...))
			}
		case OpBranch, OpBrTrue, OpBrFalse:
			if ins.Arg >= n {
				err = multierr.Append(err, verr(fmt.Sprintf("branch offset %d out of range", ins.Arg), p...))
			}
		default:
			if ins.Op >= opCount {
				err = multierr.Append(err, verr(fmt.Sprintf("unknown opcode %d", ins.Op), p...))
			}
		}
	}
	return err
}

func (m *CompiledModule) validateDuplicateNames() error {
	var err error
	structs := make(map[string]bool, len(m.StructDefs))
	for i, def := range m.StructDefs {
		if int(def.StructHandle) >= len(m.StructHandles) {
			continue
		}
		h := m.StructHandles[def.StructHandle]
		if int(h.Name) >= len(m.Identifiers) {
			continue
		}
		name := m.Identifiers[h.Name]
		if structs[name] {
			err = multierr.Append(err, verr("duplicate struct definition", "struct_defs", idx(i)))
		}
		structs[name] = true
	}
	funcs := make(map[string]bool, len(m.FunctionDefs))
	for i, def := range m.FunctionDefs {
		if int(def.Function) >= len(m.FunctionHandles) {
			continue
		}
		h := m.FunctionHandles[def.Function]
		if int(h.Name) >= len(m.Identifiers) {
			continue
		}
		name := m.Identifiers[h.Name]
		if funcs[name] {
			err = multierr.Append(err, verr("duplicate function definition", "function_defs", idx(i)))
		}
		funcs[name] = true
	}
	return err
}
