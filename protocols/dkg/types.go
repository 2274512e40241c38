package dkg

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/share"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

var (
	ErrShareNotFound     = errors.New("dkg: no share addressed to us")
	ErrInvalidSignature  = errors.New("dkg: invalid signature")
	ErrCount             = errors.New("dkg: unexpected number of entries")
	ErrUnexpectedIndex   = errors.New("dkg: unexpected participant index")
	ErrInconsistentKey   = errors.New("dkg: individual public keys are inconsistent")
	ErrWrongPolynomial   = errors.New("dkg: data for another polynomial")
	ErrInvalidParameters = errors.New("dkg: invalid parameters")
)

// Share is one encrypted evaluation of a dealer's polynomial.
type Share struct {
	_ struct{} `cbor:",toarray"`
	// Index is the recipient.
	Index          party.Index
	EncShare       share.Ciphertext
	OriginalLength uint8
}

// ShareData is the batch a dealer sends for one polynomial, one Share per other participant.
type ShareData struct {
	_ struct{} `cbor:",toarray"`
	// Index is the dealer.
	Index      party.Index
	Polynomial types.Polynomial
	Data       []Share
}

// SignedShareData binds all shares of a batch under one signature of the dealer's long-term key.
type SignedShareData struct {
	_         struct{} `cbor:",toarray"`
	ShareData ShareData
	Signature ecdsa.Signature
}

// SignedPublicKey is a participant's individual public key Qᵢ = sᵢ⋅G.
//
// An identity Qᵢ is encoded as all zeros.
type SignedPublicKey struct {
	_          struct{} `cbor:",toarray"`
	Index      party.Index
	Polynomial types.Polynomial
	PubKey     ecdsa.PublicKey
	Signature  ecdsa.Signature
}

// statement is what the Signature of a SignedPublicKey covers.
type statement struct {
	_          struct{} `cbor:",toarray"`
	Index      party.Index
	Polynomial types.Polynomial
	PubKey     ecdsa.PublicKey
}

func (k *SignedPublicKey) statement() statement {
	return statement{Index: k.Index, Polynomial: k.Polynomial, PubKey: k.PubKey}
}

// GroupKeyInfo is the outcome of a sharing: the group public key, and the participant's share
// encrypted under its long-term private key.
//
// The group public key of a zero-sharing is the identity, encoded as all zeros.
type GroupKeyInfo struct {
	_           struct{} `cbor:",toarray"`
	GroupPubKey ecdsa.PublicKey
	GroupShare  Share
}

// Params describe one run of the sharing.
type Params struct {
	Group curve.Curve
	Info  *group.GroupInfo
	// Indices are the participants of this run, a subset of the group of size at least T.
	Indices    party.IndexSlice
	Identity   *ecdsa.PrivateKey
	Polynomial types.Polynomial
}

// Self returns the index of the holder of Identity, and checks that the parameters are consistent.
func (p *Params) Self() (party.Index, error) {
	if p.Group == nil || p.Info == nil || p.Identity == nil {
		return 0, ErrInvalidParameters
	}
	self, ok := p.Info.IndexOf(p.Identity.Public())
	if !ok {
		return 0, group.ErrNotMember
	}
	if !p.Indices.Valid(len(p.Info.Participants)) {
		return 0, fmt.Errorf("%w: indices %v", ErrInvalidParameters, p.Indices)
	}
	if !p.Indices.Contains(self) {
		return 0, fmt.Errorf("%w: own index %d not included", ErrUnexpectedIndex, self)
	}
	if len(p.Indices) < int(p.Info.Threshold) {
		return 0, fmt.Errorf("%w: %d participants for threshold %d", ErrInvalidParameters, len(p.Indices), p.Info.Threshold)
	}
	return self, nil
}

func pointToKey(p curve.Point) (ecdsa.PublicKey, error) {
	if p.IsIdentity() {
		return ecdsa.PublicKey{}, nil
	}
	return ecdsa.PublicKeyFromPoint(p)
}

func keyToPoint(group curve.Curve, pub ecdsa.PublicKey) (curve.Point, error) {
	if pub == (ecdsa.PublicKey{}) {
		return group.NewPoint(), nil
	}
	return pub.Point(group)
}
