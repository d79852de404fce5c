package types

import (
	"strconv"
	"strings"

	"github.com/wippyai/modcache/bytecode"
)

// Kind identifies the shape of a resolved Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindU64
	KindString
	KindByteArray
	KindAddress
	KindStruct
	KindTypeParameter
	KindReference
	KindMutableReference
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindU64:
		return "u64"
	case KindString:
		return "string"
	case KindByteArray:
		return "bytearray"
	case KindAddress:
		return "address"
	case KindStruct:
		return "struct"
	case KindTypeParameter:
		return "type_parameter"
	case KindReference:
		return "reference"
	case KindMutableReference:
		return "mutable_reference"
	default:
		return "invalid"
	}
}

// Type is a resolved type.
//
// Struct is set for KindStruct, Param for KindTypeParameter and Elem for the
// two reference kinds. A reference exclusively owns its Elem.
type Type struct {
	Struct *StructDef
	Elem   *Type
	Kind   Kind
	Param  bytecode.TypeParameterIndex
}

func Bool() Type      { return Type{Kind: KindBool} }
func U64() Type       { return Type{Kind: KindU64} }
func String() Type    { return Type{Kind: KindString} }
func ByteArray() Type { return Type{Kind: KindByteArray} }
func Address() Type   { return Type{Kind: KindAddress} }

// StructOf instantiates a resolved struct.
func StructOf(def *StructDef) Type {
	return Type{Kind: KindStruct, Struct: def}
}

// TypeParameter is an unsubstituted reference to a type formal.
func TypeParameter(idx bytecode.TypeParameterIndex) Type {
	return Type{Kind: KindTypeParameter, Param: idx}
}

// Reference wraps elem in an immutable reference.
func Reference(elem Type) Type {
	return Type{Kind: KindReference, Elem: &elem}
}

// MutableReference wraps elem in a mutable reference.
func MutableReference(elem Type) Type {
	return Type{Kind: KindMutableReference, Elem: &elem}
}

// Primitive maps a primitive signature token kind to its type.
func Primitive(k bytecode.TokenKind) (Type, bool) {
	switch k {
	case bytecode.TokenBool:
		return Bool(), true
	case bytecode.TokenU64:
		return U64(), true
	case bytecode.TokenString:
		return String(), true
	case bytecode.TokenByteArray:
		return ByteArray(), true
	case bytecode.TokenAddress:
		return Address(), true
	default:
		return Type{}, false
	}
}

// IsReference reports whether t is either kind of reference.
func (t Type) IsReference() bool {
	return t.Kind == KindReference || t.Kind == KindMutableReference
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindStruct:
		return t.Struct.Equal(o.Struct)
	case KindTypeParameter:
		return t.Param == o.Param
	case KindReference, KindMutableReference:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	default:
		return true
	}
}

func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	switch t.Kind {
	case KindStruct:
		if t.Struct == nil {
			b.WriteString("struct<nil>")
			return
		}
		t.Struct.write(b)
	case KindTypeParameter:
		b.WriteByte('T')
		b.WriteString(strconv.Itoa(int(t.Param)))
	case KindReference, KindMutableReference:
		b.WriteByte('&')
		if t.Kind == KindMutableReference {
			b.WriteString("mut ")
		}
		if t.Elem != nil {
			t.Elem.write(b)
		}
	default:
		b.WriteString(t.Kind.String())
	}
}
