package polynomial

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/party"
)

var ErrInvalidDomain = errors.New("polynomial: interpolation domain contains 0 or duplicates")

// LagrangeAt returns the Lagrange coefficients λⱼ(target) for every index j of the interpolation domain.
//
// The following formula is taken from
// https://en.wikipedia.org/wiki/Lagrange_polynomial
//
//	           (target - x₀) ⋅⋅⋅ (target - xₖ)
//	λⱼ(target) = ---------------------------------   (the factor for xⱼ being omitted)
//	             (xⱼ - x₀) ⋅⋅⋅ (xⱼ - xₖ)
func LagrangeAt(group curve.Curve, domain []party.Index, target party.Index) (map[party.Index]curve.Scalar, error) {
	scalars := make(map[party.Index]curve.Scalar, len(domain))
	for _, id := range domain {
		if id == 0 {
			return nil, ErrInvalidDomain
		}
		if _, dup := scalars[id]; dup {
			return nil, ErrInvalidDomain
		}
		scalars[id] = id.Scalar(group)
	}
	t := curve.ScalarFromUint32(group, uint32(target))

	coefficients := make(map[party.Index]curve.Scalar, len(domain))
	tmp := group.NewScalar()
	for j, xJ := range scalars {
		numerator := curve.ScalarFromUint32(group, 1)
		denominator := curve.ScalarFromUint32(group, 1)
		for i, xI := range scalars {
			if i == j {
				continue
			}
			// numerator *= target - xᵢ
			numerator.Mul(tmp.Set(t).Sub(xI))
			// denominator *= xⱼ - xᵢ
			denominator.Mul(tmp.Set(xJ).Sub(xI))
		}
		coefficients[j] = numerator.Mul(denominator.Invert())
	}
	return coefficients, nil
}

// Interpolate returns Σ λⱼ(target)⋅sⱼ over the given shares.
func Interpolate(group curve.Curve, shares map[party.Index]curve.Scalar, target party.Index) (curve.Scalar, error) {
	lagrange, err := LagrangeAt(group, domainOf(shares), target)
	if err != nil {
		return nil, err
	}
	result := group.NewScalar()
	for j, s := range shares {
		result.Add(lagrange[j].Mul(s))
	}
	return result, nil
}

// InterpolateExponent returns Σ λⱼ(target)⋅Pⱼ.
//
// Only point arithmetic is performed, so the discrete logarithms of the Pⱼ never need to be known.
func InterpolateExponent(group curve.Curve, points map[party.Index]curve.Point, target party.Index) (curve.Point, error) {
	lagrange, err := LagrangeAt(group, domainOf(points), target)
	if err != nil {
		return nil, err
	}
	result := group.NewPoint()
	for j, p := range points {
		if p == nil {
			return nil, fmt.Errorf("polynomial: nil point for index %d", j)
		}
		result = result.Add(lagrange[j].Act(p))
	}
	return result, nil
}

func domainOf[V any](m map[party.Index]V) []party.Index {
	domain := make([]party.Index, 0, len(m))
	for id := range m {
		domain = append(domain, id)
	}
	return domain
}
