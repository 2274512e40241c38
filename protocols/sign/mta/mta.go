// Package mta starts the multiplicative-to-additive conversions of a signing session.
//
// Every pair of signers runs one conversion. The lower ranked party of a pair is the sender,
// the other one the receiver. A receiver first publishes OTParam fresh OT base keys, one at a
// time, and then signs a commitment to all of them so that the sender can check the relayed
// keys were not tampered with.
package mta

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/mpc-vault/internal/ot"
	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/hash"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/party"
)

var (
	ErrNotSigner   = errors.New("mta: own index is not among the signers")
	ErrCounter     = errors.New("mta: unexpected instance counter")
	ErrIncomplete  = errors.New("mta: not all base keys were sent")
	ErrCounterpart = errors.New("mta: unexpected counterpart")
)

// Session holds our roles in the conversions of one signing session.
type Session struct {
	// Indices are the signers, sorted.
	Indices party.IndexSlice
	Self    party.Index
	// Rank is the position of Self in Indices.
	Rank int
	// SenderTimes = T-1-Rank is the number of conversions where we send.
	SenderTimes int
	// ReceiverTimes = Rank is the number of conversions where we receive.
	ReceiverTimes int

	bValue [params.BytesBValue]byte
}

// NewSession computes the roles of self among indices, and stores the input K ∥ A ∥ x ∥ P.
func NewSession(indices party.IndexSlice, self party.Index, k, a, x, p curve.Scalar) (*Session, error) {
	sorted := indices.Copy()
	sorted.Sort()
	rank, ok := sorted.Search(self)
	if !ok {
		return nil, ErrNotSigner
	}
	s := &Session{
		Indices:       sorted,
		Self:          self,
		Rank:          rank,
		SenderTimes:   len(sorted) - 1 - rank,
		ReceiverTimes: rank,
	}
	for i, scalar := range []curve.Scalar{k, a, x, p} {
		data, err := scalar.MarshalBinary()
		if err != nil {
			s.Wipe()
			return nil, err
		}
		copy(s.bValue[i*params.BytesScalar:], data)
		for j := range data {
			data[j] = 0
		}
	}
	return s, nil
}

// Counterparts returns the signers we receive from, in the order the exchanges are run.
func (s *Session) Counterparts() []party.Index {
	return s.Indices[:s.Rank].Copy()
}

// BValue returns a copy of K ∥ A ∥ x ∥ P.
func (s *Session) BValue() [params.BytesBValue]byte {
	return s.bValue
}

// Wipe erases the B-value.
func (s *Session) Wipe() {
	for i := range s.bValue {
		s.bValue[i] = 0
	}
}

func transcript(receiver, counterpart party.Index) *hash.Hash {
	return hash.New(
		&hash.BytesWithDomain{TheDomain: "MtA Receiver Base Keys", Bytes: nil},
		receiver,
		counterpart,
	)
}

// Commitment returns the digest signed by receiver after sending keys to counterpart.
func Commitment(group curve.Curve, receiver, counterpart party.Index, keys []ecdsa.PublicKey) ([]byte, error) {
	h := transcript(receiver, counterpart)
	for i, k := range keys {
		point, err := k.Point(group)
		if err != nil {
			return nil, fmt.Errorf("mta: base key %d: %w", i, err)
		}
		if err = h.WriteAny(point); err != nil {
			return nil, err
		}
	}
	out := make([]byte, params.SecBytes)
	if _, err := io.ReadFull(h.Digest(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCommitment checks the signature of receiver over the OTParam keys it sent to counterpart.
func VerifyCommitment(group curve.Curve, receiver, counterpart party.Index, keys []ecdsa.PublicKey, sig ecdsa.Signature, pub ecdsa.PublicKey) bool {
	if len(keys) != params.OTParam {
		return false
	}
	digest, err := Commitment(group, receiver, counterpart, keys)
	if err != nil {
		return false
	}
	return ecdsa.Verify(digest, sig, pub)
}

// Receiver runs our side of the base key exchange with one counterpart.
type Receiver struct {
	Counterpart party.Index
	self        party.Index
	keys        *ot.ReceiverKeys
	next        int
	transcript  *hash.Hash
}

// NewReceiver samples the base keys for the exchange with counterpart.
func (s *Session) NewReceiver(rand io.Reader, group curve.Curve, counterpart party.Index) (*Receiver, error) {
	i, ok := s.Indices.Search(counterpart)
	if !ok || i >= s.Rank {
		return nil, fmt.Errorf("%w: %d", ErrCounterpart, counterpart)
	}
	return &Receiver{
		Counterpart: counterpart,
		self:        s.Self,
		keys:        ot.NewReceiverKeys(rand, group, params.OTParam),
		transcript:  transcript(s.Self, counterpart),
	}, nil
}

// Next returns the base key of instance counter. Instances must be requested in order.
func (r *Receiver) Next(counter uint16) (ecdsa.PublicKey, error) {
	if int(counter) != r.next || r.next >= r.keys.Len() {
		return ecdsa.PublicKey{}, fmt.Errorf("%w: got %d, expected %d", ErrCounter, counter, r.next)
	}
	A := r.keys.Public(r.next)
	if err := r.transcript.WriteAny(A); err != nil {
		return ecdsa.PublicKey{}, err
	}
	r.next++
	return ecdsa.PublicKeyFromPoint(A)
}

// Done returns true once all base keys were sent.
func (r *Receiver) Done() bool {
	return r.next == r.keys.Len()
}

// Sign signs the commitment to all base keys sent.
func (r *Receiver) Sign(identity *ecdsa.PrivateKey) (ecdsa.Signature, error) {
	if !r.Done() {
		return ecdsa.Signature{}, ErrIncomplete
	}
	digest := make([]byte, params.SecBytes)
	if _, err := io.ReadFull(r.transcript.Digest(), digest); err != nil {
		return ecdsa.Signature{}, err
	}
	return ecdsa.Sign(digest, identity), nil
}

// Wipe erases the secret exponents of the base keys.
func (r *Receiver) Wipe() {
	r.keys.Wipe()
}
