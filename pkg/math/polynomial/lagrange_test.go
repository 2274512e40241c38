package polynomial

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
	"github.com/taurusgroup/mpc-vault/pkg/party"
)

// subsets returns every subset of size k of 1, …, n.
func subsets(n, k int) [][]party.Index {
	var out [][]party.Index
	var rec func(start int, acc []party.Index)
	rec = func(start int, acc []party.Index) {
		if len(acc) == k {
			out = append(out, append([]party.Index(nil), acc...))
			return
		}
		for i := start; i <= n; i++ {
			rec(i+1, append(acc, party.Index(i)))
		}
	}
	rec(1, nil)
	return out
}

func TestLagrange_Reconstruction(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for threshold := 1; threshold <= n; threshold++ {
			t.Run(fmt.Sprintf("%d-of-%d", threshold, n), func(t *testing.T) {
				secret := sample.Scalar(rand.Reader, group)
				poly := NewPolynomial(group, threshold-1, secret)
				shares := make(map[party.Index]curve.Scalar, n)
				for _, i := range party.Sequence(n) {
					shares[i] = poly.Evaluate(i.Scalar(group))
				}
				for _, subset := range subsets(n, threshold) {
					sub := make(map[party.Index]curve.Scalar, threshold)
					for _, i := range subset {
						sub[i] = shares[i]
					}
					reconstructed, err := Interpolate(group, sub, 0)
					require.NoError(t, err)
					assert.True(t, reconstructed.Equal(secret), "subset %v", subset)
				}
			})
		}
	}
}

func TestLagrange_ZeroSharing(t *testing.T) {
	n, threshold := 5, 3
	sum := make(map[party.Index]curve.Scalar, n)
	for _, i := range party.Sequence(n) {
		sum[i] = group.NewScalar()
	}
	for dealer := 0; dealer < n; dealer++ {
		poly := NewPolynomial(group, threshold-1, nil)
		for _, i := range party.Sequence(n) {
			sum[i].Add(poly.Evaluate(i.Scalar(group)))
		}
	}
	sub := map[party.Index]curve.Scalar{2: sum[2], 4: sum[4], 5: sum[5]}
	reconstructed, err := Interpolate(group, sub, 0)
	require.NoError(t, err)
	assert.True(t, reconstructed.IsZero())
}

func TestLagrange_SumToOneAtZero(t *testing.T) {
	domain := []party.Index{1, 3, 7, 8}
	coefficients, err := LagrangeAt(group, domain, 0)
	require.NoError(t, err)
	sum := group.NewScalar()
	for _, c := range coefficients {
		sum.Add(c)
	}
	assert.True(t, sum.Equal(curve.ScalarFromUint32(group, 1)))
}

func TestLagrange_InvalidDomain(t *testing.T) {
	_, err := LagrangeAt(group, []party.Index{1, 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidDomain)
	_, err = LagrangeAt(group, []party.Index{0, 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestInterpolateExponent(t *testing.T) {
	n, threshold := 4, 3
	secret := sample.Scalar(rand.Reader, group)
	poly := NewPolynomial(group, threshold-1, secret)
	public := make(map[party.Index]curve.Point, n)
	for _, i := range party.Sequence(n) {
		public[i] = poly.Evaluate(i.Scalar(group)).ActOnBase()
	}

	sub := map[party.Index]curve.Point{1: public[1], 2: public[2], 4: public[4]}
	Q, err := InterpolateExponent(group, sub, 0)
	require.NoError(t, err)
	assert.True(t, Q.Equal(secret.ActOnBase()))

	atThree, err := InterpolateExponent(group, sub, 3)
	require.NoError(t, err)
	assert.True(t, atThree.Equal(public[3]))

	// tampering with one point breaks the cross-check
	sub[2] = sub[2].Add(group.NewBasePoint())
	atThree, err = InterpolateExponent(group, sub, 3)
	require.NoError(t, err)
	assert.False(t, atThree.Equal(public[3]))
}
