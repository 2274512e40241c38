package polynomial

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
)

var group = curve.Secp256k1{}

func TestPolynomial_Constant(t *testing.T) {
	deg := 10
	secret := sample.Scalar(rand.Reader, group)
	poly := NewPolynomial(group, deg, secret)
	require.True(t, poly.coefficients[0].Equal(secret))
	require.Len(t, poly.coefficients, deg+1)

	zero := NewPolynomial(group, deg, nil)
	require.True(t, zero.coefficients[0].IsZero())
}

func TestPolynomial_Evaluate(t *testing.T) {
	polynomial := &Polynomial{group, make([]curve.Scalar, 3)}
	polynomial.coefficients[0] = curve.ScalarFromUint32(group, 1)
	polynomial.coefficients[1] = curve.ScalarFromUint32(group, 0)
	polynomial.coefficients[2] = curve.ScalarFromUint32(group, 1)

	for index := 0; index < 100; index++ {
		x := mrand.Uint32()
		if x == 0 {
			continue
		}
		result := big.NewInt(int64(x))
		result.Mul(result, result)
		result.Add(result, big.NewInt(1))
		computedResult := polynomial.Evaluate(curve.ScalarFromUint32(group, x))
		expectedResult := group.NewScalar().SetNat(new(saferith.Nat).SetBig(result, result.BitLen()))
		assert.True(t, expectedResult.Equal(computedResult))
	}
}

func TestPolynomial_EvaluateZeroPanics(t *testing.T) {
	poly := NewPolynomial(group, 2, nil)
	assert.Panics(t, func() { poly.Evaluate(group.NewScalar()) })
}

func TestPolynomial_Wipe(t *testing.T) {
	poly := NewPolynomial(group, 3, sample.Scalar(rand.Reader, group))
	poly.Wipe()
	for _, c := range poly.coefficients {
		assert.True(t, c.IsZero())
	}
}
