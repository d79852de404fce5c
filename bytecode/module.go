package bytecode

// Accessors assume a verified module: indices are trusted and out-of-range
// access panics, exactly like indexing the underlying tables.

// SelfHandle returns the handle of the module being defined.
func (m *CompiledModule) SelfHandle() *ModuleHandle {
	return &m.ModuleHandles[SelfModuleHandleIndex]
}

// SelfID returns the identifier this module is published under.
func (m *CompiledModule) SelfID() ModuleID {
	return m.ModuleIDForHandle(SelfModuleHandleIndex)
}

// ModuleIDForHandle resolves a module handle to a module identifier.
func (m *CompiledModule) ModuleIDForHandle(idx ModuleHandleIndex) ModuleID {
	h := &m.ModuleHandles[idx]
	return ModuleID{
		Address: m.AddressPool[h.Address],
		Name:    m.Identifiers[h.Name],
	}
}

// Identifier returns the identifier at idx.
func (m *CompiledModule) Identifier(idx IdentifierIndex) string {
	return m.Identifiers[idx]
}

// StructHandleAt returns the struct handle at idx.
func (m *CompiledModule) StructHandleAt(idx StructHandleIndex) *StructHandle {
	return &m.StructHandles[idx]
}

// FunctionHandleAt returns the function handle at idx.
func (m *CompiledModule) FunctionHandleAt(idx FunctionHandleIndex) *FunctionHandle {
	return &m.FunctionHandles[idx]
}

// StructDefAt returns the struct definition at idx.
func (m *CompiledModule) StructDefAt(idx StructDefinitionIndex) *StructDefinition {
	return &m.StructDefs[idx]
}

// FunctionDefAt returns the function definition at idx.
func (m *CompiledModule) FunctionDefAt(idx FunctionDefinitionIndex) *FunctionDefinition {
	return &m.FunctionDefs[idx]
}

// TypeSignatureAt returns the type signature at idx.
func (m *CompiledModule) TypeSignatureAt(idx TypeSignatureIndex) *TypeSignature {
	return &m.TypeSignatures[idx]
}

// FunctionSignatureAt returns the function signature at idx.
func (m *CompiledModule) FunctionSignatureAt(idx FunctionSignatureIndex) *FunctionSignature {
	return &m.FunctionSignatures[idx]
}

// FieldDefRange returns the fields owned by a declared struct definition.
func (m *CompiledModule) FieldDefRange(def *StructDefinition) []FieldDefinition {
	if def.Native {
		return nil
	}
	start := int(def.Fields)
	return m.FieldDefs[start : start+int(def.FieldCount)]
}

// StructHandleModuleID returns the module that declares the struct behind h.
func (m *CompiledModule) StructHandleModuleID(h *StructHandle) ModuleID {
	return m.ModuleIDForHandle(h.Module)
}

// StructHandleName returns the declared name of the struct behind h.
func (m *CompiledModule) StructHandleName(h *StructHandle) string {
	return m.Identifiers[h.Name]
}

// FunctionHandleModuleID returns the module that declares the function behind h.
func (m *CompiledModule) FunctionHandleModuleID(h *FunctionHandle) ModuleID {
	return m.ModuleIDForHandle(h.Module)
}

// FunctionHandleName returns the declared name of the function behind h.
func (m *CompiledModule) FunctionHandleName(h *FunctionHandle) string {
	return m.Identifiers[h.Name]
}

// StructDefName returns the name of the struct defined at idx.
func (m *CompiledModule) StructDefName(idx StructDefinitionIndex) string {
	return m.StructHandleName(m.StructHandleAt(m.StructDefAt(idx).StructHandle))
}

// FunctionDefName returns the name of the function defined at idx.
func (m *CompiledModule) FunctionDefName(idx FunctionDefinitionIndex) string {
	return m.FunctionHandleName(m.FunctionHandleAt(m.FunctionDefAt(idx).Function))
}

// Dependencies returns the ids of every other module this module references.
func (m *CompiledModule) Dependencies() []ModuleID {
	if len(m.ModuleHandles) <= 1 {
		return nil
	}
	deps := make([]ModuleID, 0, len(m.ModuleHandles)-1)
	for i := 1; i < len(m.ModuleHandles); i++ {
		deps = append(deps, m.ModuleIDForHandle(ModuleHandleIndex(i)))
	}
	return deps
}
