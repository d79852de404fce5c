package types

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/errors"
	"github.com/wippyai/modcache/gas"
)

// TypeContext binds the type formals of a generic declaration to types at
// one instantiation site.
type TypeContext struct {
	actuals []Type
}

// NewTypeContext binds formal i to actuals[i].
func NewTypeContext(actuals []Type) TypeContext {
	return TypeContext{actuals: actuals}
}

// IdentityMapping maps each of arity formals to itself. It is the context a
// declaration is resolved in before any use site substitutes it.
func IdentityMapping(arity int) (TypeContext, error) {
	if _, err := safecast.Conv[uint16](arity); err != nil {
		return TypeContext{}, errors.Wrap(errors.PhaseResolve, errors.KindInvariantViolation, err,
			fmt.Sprintf("type formal count %d overflows", arity))
	}
	actuals := make([]Type, arity)
	for i := range actuals {
		actuals[i] = TypeParameter(bytecode.TypeParameterIndex(i))
	}
	return TypeContext{actuals: actuals}, nil
}

// Len returns the number of bound formals.
func (c TypeContext) Len() int { return len(c.actuals) }

// Actuals returns the bound types in formal order.
func (c TypeContext) Actuals() []Type { return c.actuals }

// GetType returns the type bound to formal idx.
func (c TypeContext) GetType(idx bytecode.TypeParameterIndex) (Type, error) {
	if int(idx) >= len(c.actuals) {
		return Type{}, errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
			Path("type_context").
			Value(int(idx)).
			Detail("type parameter %d out of range (context has %d)", idx, len(c.actuals)).
			Build()
	}
	return c.actuals[idx], nil
}

// Subst replaces every type parameter in t with its binding, charging unit
// to meter for every type node it visits. A struct shape shared by several
// fields is instantiated once per call and shared in the result.
func (c TypeContext) Subst(t Type, meter gas.Meter, unit uint64) (Type, error) {
	s := substitution{ctx: c, meter: meter, unit: unit}
	return s.typ(t)
}

// SubstStructDef instantiates def in this context. def itself is not
// modified. Charging follows Subst.
func (c TypeContext) SubstStructDef(def *StructDef, meter gas.Meter, unit uint64) (*StructDef, error) {
	s := substitution{ctx: c, meter: meter, unit: unit}
	return s.structDef(def)
}

type substitution struct {
	ctx   TypeContext
	meter gas.Meter
	unit  uint64
	done  map[*StructDef]*StructDef
}

func (s *substitution) typ(t Type) (Type, error) {
	if err := s.meter.Charge(s.unit); err != nil {
		return Type{}, err
	}
	switch t.Kind {
	case KindTypeParameter:
		return s.ctx.GetType(t.Param)
	case KindStruct:
		def, err := s.structDef(t.Struct)
		if err != nil {
			return Type{}, err
		}
		return StructOf(def), nil
	case KindReference, KindMutableReference:
		if t.Elem == nil {
			return t, nil
		}
		elem, err := s.typ(*t.Elem)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: t.Kind, Elem: &elem}, nil
	default:
		return t, nil
	}
}

func (s *substitution) structDef(def *StructDef) (*StructDef, error) {
	if def == nil {
		return nil, nil
	}
	if out, ok := s.done[def]; ok {
		return out, nil
	}
	var out *StructDef
	if def.IsNative() {
		actuals, err := s.all(def.Native.TypeActuals)
		if err != nil {
			return nil, err
		}
		out = NewNativeStructDef(NativeStructType{Tag: def.Native.Tag, TypeActuals: actuals})
	} else {
		fields, err := s.all(def.Fields)
		if err != nil {
			return nil, err
		}
		out = NewStructDef(fields)
	}
	if s.done == nil {
		s.done = make(map[*StructDef]*StructDef)
	}
	s.done[def] = out
	return out, nil
}

func (s *substitution) all(ts []Type) ([]Type, error) {
	if ts == nil {
		return nil, nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		r, err := s.typ(t)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
