package math

import (
	"errors"
	"fmt"
)

// ErrInvalidBasisDescriptor is returned for malformed basis descriptors.
var ErrInvalidBasisDescriptor = errors.New("invalid basis descriptor")

// Basis conventions used by the viewer.
const (
	// BasisIFC is the Z-up convention used by IFC and BCF viewpoints.
	BasisIFC = "+X+Z-Y"
	// BasisRenderer is the Y-up right-handed renderer convention.
	BasisRenderer = "+X+Y+Z"
)

// AxisLabel is one signed axis of a basis descriptor.
type AxisLabel struct {
	Axis int     // 0=X, 1=Y, 2=Z
	Sign float32 // +1 or -1
}

// Basis is a parsed descriptor such as "+X+Z-Y".
// Label i names the source component, with its sign, that supplies
// canonical axis i.
type Basis [3]AxisLabel

// ParseBasis parses a three-label basis descriptor.
func ParseBasis(desc string) (Basis, error) {
	var b Basis
	if len(desc) != 6 {
		return b, fmt.Errorf("%w %q: want 6 characters, got %d", ErrInvalidBasisDescriptor, desc, len(desc))
	}

	var seen [3]bool
	for i := 0; i < 3; i++ {
		sign, axis := desc[i*2], desc[i*2+1]

		switch sign {
		case '+':
			b[i].Sign = 1
		case '-':
			b[i].Sign = -1
		default:
			return b, fmt.Errorf("%w %q: bad sign %q", ErrInvalidBasisDescriptor, desc, sign)
		}

		switch axis {
		case 'X', 'x':
			b[i].Axis = 0
		case 'Y', 'y':
			b[i].Axis = 1
		case 'Z', 'z':
			b[i].Axis = 2
		default:
			return b, fmt.Errorf("%w %q: bad axis %q", ErrInvalidBasisDescriptor, desc, axis)
		}

		if seen[b[i].Axis] {
			return b, fmt.Errorf("%w %q: axis %q repeated", ErrInvalidBasisDescriptor, desc, axis)
		}
		seen[b[i].Axis] = true
	}
	return b, nil
}

// String formats the basis back into descriptor form.
func (b Basis) String() string {
	buf := make([]byte, 0, 6)
	for _, l := range b {
		if l.Sign < 0 {
			buf = append(buf, '-')
		} else {
			buf = append(buf, '+')
		}
		buf = append(buf, "XYZ"[l.Axis])
	}
	return string(buf)
}

// toCanonical returns the signed permutation taking basis coordinates
// to canonical coordinates.
func (b Basis) toCanonical() Mat4 {
	var m Mat4
	for row, l := range b {
		m[l.Axis*4+row] = l.Sign
	}
	m[15] = 1
	return m
}

// BasisTransform returns the linear transform mapping vectors expressed in
// the from basis to the to basis. The result is a signed permutation with
// no translation or scale.
func BasisTransform(from, to string) (Mat4, error) {
	fb, err := ParseBasis(from)
	if err != nil {
		return Identity(), err
	}
	tb, err := ParseBasis(to)
	if err != nil {
		return Identity(), err
	}
	return BasisTransformOf(fb, tb), nil
}

// BasisTransformOf is BasisTransform for already parsed bases.
func BasisTransformOf(from, to Basis) Mat4 {
	// Signed permutations are orthogonal, so the inverse is the transpose.
	return to.toCanonical().Transpose().Mul(from.toCanonical())
}

// IFCToRenderer returns the transform from IFC/BCF Z-up coordinates to
// renderer Y-up coordinates.
func IFCToRenderer() Mat4 {
	m, _ := BasisTransform(BasisIFC, BasisRenderer)
	return m
}
