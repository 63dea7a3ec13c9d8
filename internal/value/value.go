// Package value defines the closed union of data a socket can carry and the
// backend-agnostic literal formatting rules shared by both code emitters.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind discriminates the two storable shapes of a socket value.
type Kind int

const (
	KindScalar Kind = iota
	KindVector
)

// Value is a strongly typed scalar-or-vector union. The zero Value is a
// scalar zero, which matches the degradation rule for missing values.
type Value struct {
	kind   Kind
	scalar float64
	vec    []float64
}

// Scalar wraps a single float as a Value.
func Scalar(f float64) Value {
	return Value{kind: KindScalar, scalar: f}
}

// Vector wraps a fixed list of components as a Value. Legacy documents may
// carry fewer components than the destination socket expects; padding
// happens at read time in Components, nowhere else.
func Vector(components ...float64) Value {
	vec := make([]float64, len(components))
	copy(vec, components)
	return Value{kind: KindVector, vec: vec}
}

// Kind reports which arm of the union is populated.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the scalar arm. For a vector it returns the first
// component, which keeps the formatter total over the union.
func (v Value) Float() float64 {
	if v.kind == KindVector {
		if len(v.vec) == 0 {
			return 0
		}
		return v.vec[0]
	}
	return v.scalar
}

// Components returns exactly arity components, padding with zeros when the
// stored vector is shorter (the 2-component legacy shorthand) and
// truncating when it is longer. A scalar is splatted across all lanes.
func (v Value) Components(arity int) []float64 {
	out := make([]float64, arity)
	switch v.kind {
	case KindScalar:
		for i := range out {
			out[i] = v.scalar
		}
	case KindVector:
		copy(out, v.vec)
	}
	return out
}

// FromCty converts a decoded HCL value into the closed union. Numbers
// become scalars; tuples and lists of numbers become vectors.
func FromCty(val cty.Value) (Value, error) {
	if val.IsNull() {
		return Value{}, fmt.Errorf("null value cannot be stored on a socket")
	}
	ty := val.Type()
	switch {
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return Scalar(f), nil
	case ty.IsTupleType() || ty.IsListType():
		var components []float64
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() != cty.Number {
				return Value{}, fmt.Errorf("vector component must be a number, got %s", elem.Type().FriendlyName())
			}
			f, _ := elem.AsBigFloat().Float64()
			components = append(components, f)
		}
		if len(components) == 0 {
			return Value{}, fmt.Errorf("vector value must have at least one component")
		}
		return Vector(components...), nil
	default:
		return Value{}, fmt.Errorf("unsupported socket value type %s", ty.FriendlyName())
	}
}

// FormatFloat renders a float as a shader literal. Shading languages
// distinguish "0" from "0.0" for floating types, so an integral value
// always carries a decimal point.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatFixed renders a float with fixed 4-decimal precision, used for
// color-picker literals.
func FormatFixed(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
