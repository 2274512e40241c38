package ot

import (
	"io"

	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
)

// ReceiverKeys are the base keys of the receiver side of a batch of random OTs.
//
// For every instance we sample a <- Z_q, and publish A = a⋅G. The sender later derives both
// pads from A, and we can only recompute the one matching our choice.
type ReceiverKeys struct {
	group   curve.Curve
	secrets []curve.Scalar
	public  []curve.Point
}

// NewReceiverKeys samples n fresh receiver key pairs.
func NewReceiverKeys(rand io.Reader, group curve.Curve, n int) *ReceiverKeys {
	k := &ReceiverKeys{
		group:   group,
		secrets: make([]curve.Scalar, n),
		public:  make([]curve.Point, n),
	}
	for i := 0; i < n; i++ {
		a := sample.ScalarUnit(rand, group)
		k.secrets[i] = a
		k.public[i] = a.ActOnBase()
	}
	return k
}

// Len returns the number of instances.
func (k *ReceiverKeys) Len() int { return len(k.public) }

// Public returns Aᵢ.
func (k *ReceiverKeys) Public(i int) curve.Point { return k.public[i] }

// Wipe erases the secret exponents.
func (k *ReceiverKeys) Wipe() {
	for _, a := range k.secrets {
		a.Zero()
	}
	k.secrets = nil
}
