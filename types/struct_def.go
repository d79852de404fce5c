package types

import "strings"

// NativeStructTag identifies a host-provided struct layout.
type NativeStructTag uint8

const (
	NativeVector NativeStructTag = iota + 1
)

func (t NativeStructTag) String() string {
	switch t {
	case NativeVector:
		return "vector"
	default:
		return "native"
	}
}

// NativeStructType is a host-provided struct layout applied to type actuals.
type NativeStructType struct {
	TypeActuals []Type
	Tag         NativeStructTag
}

// StructDef is the resolved shape of a struct: either an ordered list of
// field types or a native layout. Type parameters stay abstract until a
// TypeContext substitutes them. A StructDef is immutable once built.
type StructDef struct {
	Native *NativeStructType
	Fields []Type
}

// NewStructDef builds a declared struct shape.
func NewStructDef(fields []Type) *StructDef {
	return &StructDef{Fields: fields}
}

// NewNativeStructDef builds a native struct shape.
func NewNativeStructDef(n NativeStructType) *StructDef {
	return &StructDef{Native: &n}
}

// IsNative reports whether the layout is host-provided.
func (d *StructDef) IsNative() bool {
	return d.Native != nil
}

// Equal reports structural equality.
func (d *StructDef) Equal(o *StructDef) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if d.IsNative() != o.IsNative() {
		return false
	}
	if d.IsNative() {
		return d.Native.Tag == o.Native.Tag && typesEqual(d.Native.TypeActuals, o.Native.TypeActuals)
	}
	return typesEqual(d.Fields, o.Fields)
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (d *StructDef) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *StructDef) write(b *strings.Builder) {
	list := d.Fields
	if d.IsNative() {
		b.WriteString(d.Native.Tag.String())
		list = d.Native.TypeActuals
		b.WriteByte('<')
		defer b.WriteByte('>')
	} else {
		b.WriteByte('{')
		defer b.WriteByte('}')
	}
	for i, t := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		t.write(b)
	}
}
