package types

// Polynomial identifies one of the sharings of a signing session.
type Polynomial uint8

const (
	PolynomialD Polynomial = iota
	PolynomialE
	PolynomialA
	PolynomialK
	PolynomialP
	// PolynomialX is the sharing of the persistent group key, run once by the key generation flow.
	PolynomialX
)

// IsZeroSharing returns true for the sharings whose constant terms sum to 0.
func (p Polynomial) IsZeroSharing() bool {
	return p == PolynomialD || p == PolynomialE
}

func (p Polynomial) String() string {
	switch p {
	case PolynomialD:
		return "D"
	case PolynomialE:
		return "E"
	case PolynomialA:
		return "A"
	case PolynomialK:
		return "K"
	case PolynomialP:
		return "P"
	case PolynomialX:
		return "X"
	default:
		return "?"
	}
}
