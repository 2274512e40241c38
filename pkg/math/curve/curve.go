package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the prime order group our keys and shares live in.
type Curve interface {
	// NewPoint returns the identity Point of this group.
	NewPoint() Point
	// NewBasePoint returns the generator of this group.
	NewBasePoint() Point
	// NewScalar returns a Scalar set to 0.
	NewScalar() Scalar
	// Name returns the name of this curve, used for domain separation.
	Name() string
	// ScalarBits returns the number of significant bits in a scalar.
	ScalarBits() int
	// SafeScalarBytes returns the number of random bytes needed to sample a uniform scalar.
	SafeScalarBytes() int
	// Order returns a Modulus holding the order of this group.
	Order() *saferith.Modulus
}

// Scalar represents an integer modulo the order of a Curve.
//
// Methods mutate the receiver and return it, so that calls can be chained.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	// Zero sets the scalar to 0, wiping the previous value.
	Zero() Scalar
	Set(Scalar) Scalar
	// SetNat sets the scalar to x reduced modulo the group order.
	SetNat(*saferith.Nat) Scalar
	// Act returns s⋅P.
	Act(Point) Point
	// ActOnBase returns s⋅G.
	ActOnBase() Point
}

// Point represents an element of the group.
//
// Methods return new points and never mutate the receiver, with the exception of Set.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Set(Point) Point
	Negate() Point
	Equal(Point) bool
	IsIdentity() bool
	// XScalar returns the x coordinate of the point reduced modulo the group order.
	XScalar() Scalar
}

// ScalarFromUint32 returns x as a Scalar of the given group.
func ScalarFromUint32(group Curve, x uint32) Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(uint64(x)))
}

// PointFromBytes decodes a compressed point of the given group.
func PointFromBytes(group Curve, data []byte) (Point, error) {
	p := group.NewPoint()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// ScalarFromBytes decodes a big-endian scalar, rejecting values that are not reduced.
func ScalarFromBytes(group Curve, data []byte) (Scalar, error) {
	s := group.NewScalar()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}
