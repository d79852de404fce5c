package bytecode

// Opcode identifies an instruction.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpPop
	OpRet
	OpBranch
	OpBrTrue
	OpBrFalse
	OpLdTrue
	OpLdFalse
	OpLdU64
	OpCopyLoc
	OpMoveLoc
	OpStLoc
	OpCall
	OpPack
	OpUnpack
	OpAdd
	OpSub
	OpEq
	OpAbort
	opCount
)

var opcodeNames = [...]string{
	OpNop:     "nop",
	OpPop:     "pop",
	OpRet:     "ret",
	OpBranch:  "branch",
	OpBrTrue:  "br_true",
	OpBrFalse: "br_false",
	OpLdTrue:  "ld_true",
	OpLdFalse: "ld_false",
	OpLdU64:   "ld_u64",
	OpCopyLoc: "copy_loc",
	OpMoveLoc: "move_loc",
	OpStLoc:   "st_loc",
	OpCall:    "call",
	OpPack:    "pack",
	OpUnpack:  "unpack",
	OpAdd:     "add",
	OpSub:     "sub",
	OpEq:      "eq",
	OpAbort:   "abort",
}

func (op Opcode) String() string {
	if op < opCount {
		return opcodeNames[op]
	}
	return "unknown"
}

// Instruction is one bytecode instruction with an optional operand.
//
// Arg holds a function handle index for OpCall, a struct definition index for
// OpPack and OpUnpack, a code offset for branches, a local index for local
// access and an immediate for OpLdU64.
type Instruction struct {
	Arg uint64 `msgpack:"a,omitempty"`
	Op  Opcode `msgpack:"o"`
}

// Call returns a call instruction for the given function handle.
func Call(fh FunctionHandleIndex) Instruction {
	return Instruction{Op: OpCall, Arg: uint64(fh)}
}

// Pack returns a pack instruction for the given struct definition.
func Pack(sd StructDefinitionIndex) Instruction {
	return Instruction{Op: OpPack, Arg: uint64(sd)}
}

// Unpack returns an unpack instruction for the given struct definition.
func Unpack(sd StructDefinitionIndex) Instruction {
	return Instruction{Op: OpUnpack, Arg: uint64(sd)}
}

// Ret returns a return instruction.
func Ret() Instruction { return Instruction{Op: OpRet} }

// CallTarget returns the function handle of an OpCall.
func (i Instruction) CallTarget() (FunctionHandleIndex, bool) {
	if i.Op != OpCall || i.Arg >= MaxTableSize {
		return 0, false
	}
	return FunctionHandleIndex(i.Arg), true
}

// StructTarget returns the struct definition of an OpPack or OpUnpack.
func (i Instruction) StructTarget() (StructDefinitionIndex, bool) {
	if (i.Op != OpPack && i.Op != OpUnpack) || i.Arg >= MaxTableSize {
		return 0, false
	}
	return StructDefinitionIndex(i.Arg), true
}
