package bytecode

// Table indices. Every cross-table reference inside a module is one of these.
type (
	ModuleHandleIndex       uint16
	StructHandleIndex       uint16
	FunctionHandleIndex     uint16
	IdentifierIndex         uint16
	AddressPoolIndex        uint16
	TypeSignatureIndex      uint16
	FunctionSignatureIndex  uint16
	StructDefinitionIndex   uint16
	FieldDefinitionIndex    uint16
	FunctionDefinitionIndex uint16
	TypeParameterIndex      uint16
)

// SelfModuleHandleIndex is the handle of the module being defined.
const SelfModuleHandleIndex ModuleHandleIndex = 0

// MaxTableSize bounds every table so indices fit in 16 bits.
const MaxTableSize = 1 << 16

// Kind constrains a type formal.
type Kind uint8

const (
	KindAll Kind = iota
	KindResource
	KindUnrestricted
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindResource:
		return "resource"
	case KindUnrestricted:
		return "unrestricted"
	default:
		return "unknown"
	}
}

// CompiledModule is the deserialized form of an on-chain module.
// It carries no guarantees until it passes verification.
type CompiledModule struct {
	ModuleHandles      []ModuleHandle
	StructHandles      []StructHandle
	FunctionHandles    []FunctionHandle
	TypeSignatures     []TypeSignature
	FunctionSignatures []FunctionSignature
	Identifiers        []string
	AddressPool        []Address
	StructDefs         []StructDefinition
	FieldDefs          []FieldDefinition
	FunctionDefs       []FunctionDefinition
}

// ModuleHandle references a module, possibly this one.
type ModuleHandle struct {
	Address AddressPoolIndex
	Name    IdentifierIndex
}

// StructHandle references a struct declared in the module named by Module.
type StructHandle struct {
	TypeFormals       []Kind
	Module            ModuleHandleIndex
	Name              IdentifierIndex
	IsNominalResource bool
}

// FunctionHandle references a function declared in the module named by Module.
type FunctionHandle struct {
	Module    ModuleHandleIndex
	Name      IdentifierIndex
	Signature FunctionSignatureIndex
}

// TypeSignature is the type of a field.
type TypeSignature struct {
	Token SignatureToken
}

// FunctionSignature describes arguments, returns and type formals of a function.
type FunctionSignature struct {
	ReturnTypes []SignatureToken
	ArgTypes    []SignatureToken
	TypeFormals []Kind
}

// StructDefinition defines a struct declared by this module.
// Declared structs own FieldCount consecutive entries of FieldDefs starting at Fields.
type StructDefinition struct {
	StructHandle StructHandleIndex
	Native       bool
	FieldCount   uint16
	Fields       FieldDefinitionIndex
}

// FieldDefinition is a single named field of a declared struct.
type FieldDefinition struct {
	Struct    StructHandleIndex
	Name      IdentifierIndex
	Signature TypeSignatureIndex
}

// FunctionFlags holds function definition attributes.
type FunctionFlags uint8

const (
	FlagPublic FunctionFlags = 1 << iota
	FlagNative
)

// FunctionDefinition defines a function declared by this module.
type FunctionDefinition struct {
	Code     CodeUnit
	Function FunctionHandleIndex
	Flags    FunctionFlags
}

// IsPublic reports whether the function may be called from other modules.
func (f *FunctionDefinition) IsPublic() bool { return f.Flags&FlagPublic != 0 }

// IsNative reports whether the function body is provided by the host.
func (f *FunctionDefinition) IsNative() bool { return f.Flags&FlagNative != 0 }

// CodeUnit is a function body.
type CodeUnit struct {
	Code         []Instruction
	MaxStackSize uint16
}
