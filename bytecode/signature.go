package bytecode

import (
	"strconv"
	"strings"
)

// TokenKind identifies the shape of a SignatureToken.
type TokenKind uint8

const (
	TokenInvalid TokenKind = iota
	TokenBool
	TokenU64
	TokenString
	TokenByteArray
	TokenAddress
	TokenStruct
	TokenTypeParameter
	TokenReference
	TokenMutableReference
)

func (k TokenKind) String() string {
	switch k {
	case TokenBool:
		return "bool"
	case TokenU64:
		return "u64"
	case TokenString:
		return "string"
	case TokenByteArray:
		return "bytearray"
	case TokenAddress:
		return "address"
	case TokenStruct:
		return "struct"
	case TokenTypeParameter:
		return "type_parameter"
	case TokenReference:
		return "reference"
	case TokenMutableReference:
		return "mutable_reference"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether the kind needs no further resolution.
func (k TokenKind) IsPrimitive() bool {
	return k >= TokenBool && k <= TokenAddress
}

// SignatureToken is a serialized, possibly generic, possibly nested type expression.
//
// Only the fields relevant to Kind are populated:
//   - TokenStruct: Struct and TypeArgs
//   - TokenTypeParameter: TypeParam
//   - TokenReference, TokenMutableReference: Inner
type SignatureToken struct {
	Inner     *SignatureToken    `msgpack:"i,omitempty"`
	TypeArgs  []SignatureToken   `msgpack:"a,omitempty"`
	Kind      TokenKind          `msgpack:"k"`
	Struct    StructHandleIndex  `msgpack:"s,omitempty"`
	TypeParam TypeParameterIndex `msgpack:"p,omitempty"`
}

func Bool() SignatureToken      { return SignatureToken{Kind: TokenBool} }
func U64() SignatureToken       { return SignatureToken{Kind: TokenU64} }
func String() SignatureToken    { return SignatureToken{Kind: TokenString} }
func ByteArray() SignatureToken { return SignatureToken{Kind: TokenByteArray} }
func AddressToken() SignatureToken {
	return SignatureToken{Kind: TokenAddress}
}

// TypeParameter references the idx-th type formal of the enclosing declaration.
func TypeParameter(idx TypeParameterIndex) SignatureToken {
	return SignatureToken{Kind: TokenTypeParameter, TypeParam: idx}
}

// Struct instantiates the struct behind handle with the given type arguments.
func Struct(handle StructHandleIndex, typeArgs ...SignatureToken) SignatureToken {
	return SignatureToken{Kind: TokenStruct, Struct: handle, TypeArgs: typeArgs}
}

// Reference wraps inner in an immutable reference.
func Reference(inner SignatureToken) SignatureToken {
	return SignatureToken{Kind: TokenReference, Inner: &inner}
}

// MutableReference wraps inner in a mutable reference.
func MutableReference(inner SignatureToken) SignatureToken {
	return SignatureToken{Kind: TokenMutableReference, Inner: &inner}
}

// String renders the token using raw table indices.
func (t SignatureToken) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t SignatureToken) write(b *strings.Builder) {
	switch t.Kind {
	case TokenStruct:
		b.WriteString("struct#")
		b.WriteString(strconv.Itoa(int(t.Struct)))
		if len(t.TypeArgs) > 0 {
			b.WriteByte('<')
			for i, a := range t.TypeArgs {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte('>')
		}
	case TokenTypeParameter:
		b.WriteByte('T')
		b.WriteString(strconv.Itoa(int(t.TypeParam)))
	case TokenReference, TokenMutableReference:
		b.WriteByte('&')
		if t.Kind == TokenMutableReference {
			b.WriteString("mut ")
		}
		if t.Inner != nil {
			t.Inner.write(b)
		}
	default:
		b.WriteString(t.Kind.String())
	}
}
