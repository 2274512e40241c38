// Package dkg implements a verifiable Shamir sharing over the long-term identities of a group.
//
// Each participant deals a random polynomial of degree T-1, encrypting one evaluation per
// recipient under the pairwise ECDH key, and signs the whole batch. Recipients sum what they
// receive into their share sᵢ, publish Qᵢ = sᵢ⋅G, and cross-check every Qᵢ through Lagrange
// interpolation in the exponent before deriving the group key Q.
package dkg

import (
	"fmt"
	"io"

	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/curve"
	"github.com/taurusgroup/mpc-vault/pkg/math/polynomial"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/share"
)

// GenerateSignedShareData deals a fresh polynomial to p.Indices.
//
// It returns the signed batch for the other participants, and the evaluation at our own index.
// When zero is set the constant term is 0, so that the sum of all dealt secrets is 0.
func GenerateSignedShareData(rand io.Reader, p *Params, zero bool) (*SignedShareData, curve.Scalar, error) {
	self, err := p.Self()
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}

	var constant curve.Scalar
	if !zero {
		constant = sample.Scalar(rand, p.Group)
		defer constant.Zero()
	}
	f := polynomial.NewPolynomial(p.Group, int(p.Info.Threshold)-1, constant)
	defer f.Wipe()

	data := ShareData{
		Index:      self,
		Polynomial: p.Polynomial,
		Data:       make([]Share, 0, len(p.Indices)-1),
	}
	for _, j := range p.Indices {
		if j == self {
			continue
		}
		pub, _ := p.Info.PublicKeyAt(j)
		ct, err := sealScalar(p, pub, f.Evaluate(j.Scalar(p.Group)))
		if err != nil {
			return nil, nil, protocol.Crypto(fmt.Errorf("share for %d: %w", j, err))
		}
		data.Data = append(data.Data, Share{Index: j, EncShare: ct, OriginalLength: params.BytesScalar})
	}

	sig, err := ecdsa.SignStruct(&data, p.Identity)
	if err != nil {
		return nil, nil, protocol.Crypto(err)
	}
	return &SignedShareData{ShareData: data, Signature: sig}, f.Evaluate(self.Scalar(p.Group)), nil
}

// GetIndividualPublicKey verifies the batches of all other participants, and adds the share each
// addressed to us into secret. It returns our signed Qᵢ = secret⋅G.
func GetIndividualPublicKey(p *Params, list []SignedShareData, secret curve.Scalar) (*SignedPublicKey, error) {
	self, err := p.Self()
	if err != nil {
		return nil, protocol.Integrity(err)
	}
	if len(list) != len(p.Indices)-1 {
		return nil, protocol.Integrity(fmt.Errorf("%w: %d batches for %d participants", ErrCount, len(list), len(p.Indices)))
	}

	seen := make(map[party.Index]bool, len(list))
	for i := range list {
		sd := &list[i]
		dealer := sd.ShareData.Index
		if dealer == self || !p.Indices.Contains(dealer) || seen[dealer] {
			return nil, protocol.Integrity(fmt.Errorf("%w: dealer %d", ErrUnexpectedIndex, dealer))
		}
		seen[dealer] = true

		pub, _ := p.Info.PublicKeyAt(dealer)
		if !ecdsa.VerifyStruct(&sd.ShareData, sd.Signature, pub) {
			return nil, protocol.Blame(dealer, ErrInvalidSignature)
		}
		if sd.ShareData.Polynomial != p.Polynomial {
			return nil, protocol.Blame(dealer, ErrWrongPolynomial)
		}
		own, err := findShare(p, dealer, self, sd.ShareData.Data)
		if err != nil {
			return nil, protocol.Blame(dealer, err)
		}
		s, err := openScalar(p, pub, own)
		if err != nil {
			return nil, &protocol.Error{Kind: protocol.KindCrypto, Culprit: dealer, Err: err}
		}
		secret.Add(s)
		s.Zero()
	}

	Qi, err := pointToKey(secret.ActOnBase())
	if err != nil {
		return nil, protocol.Crypto(err)
	}
	signed := &SignedPublicKey{Index: self, Polynomial: p.Polynomial, PubKey: Qi}
	if signed.Signature, err = ecdsa.SignStruct(signed.statement(), p.Identity); err != nil {
		return nil, protocol.Crypto(err)
	}
	return signed, nil
}

// findShare checks the recipients of a batch and returns the share addressed to self.
func findShare(p *Params, dealer, self party.Index, shares []Share) (*Share, error) {
	if len(shares) != len(p.Indices)-1 {
		return nil, fmt.Errorf("%w: %d shares for %d participants", ErrCount, len(shares), len(p.Indices))
	}
	var own *Share
	recipients := make(map[party.Index]bool, len(shares))
	for i := range shares {
		j := shares[i].Index
		if j == dealer || !p.Indices.Contains(j) || recipients[j] {
			return nil, fmt.Errorf("%w: recipient %d", ErrUnexpectedIndex, j)
		}
		recipients[j] = true
		if j == self {
			own = &shares[i]
		}
	}
	if own == nil {
		return nil, ErrShareNotFound
	}
	if own.OriginalLength != params.BytesScalar {
		return nil, fmt.Errorf("%w: share length %d", ErrUnexpectedIndex, own.OriginalLength)
	}
	return own, nil
}

// GetGroupPublicKey checks the individual public keys of the other participants against our own,
// and returns the group key along with our share encrypted for persistence.
//
// Between T-1 and len(Indices)-1 peer keys are accepted. The first T of them, completed by our own
// when fewer, define the interpolated polynomial. Our own Qᵢ and every peer key left out must lie
// on it. The group key is the interpolation at 0.
func GetGroupPublicKey(p *Params, list []SignedPublicKey, own *SignedPublicKey, secret curve.Scalar) (*GroupKeyInfo, ecdsa.Signature, error) {
	var noSig ecdsa.Signature
	self, err := p.Self()
	if err != nil {
		return nil, noSig, protocol.Integrity(err)
	}
	threshold := int(p.Info.Threshold)

	ownPoint := secret.ActOnBase()
	ownKey, err := pointToKey(ownPoint)
	if err != nil {
		return nil, noSig, protocol.Crypto(err)
	}
	if own == nil || own.Index != self || own.PubKey != ownKey {
		return nil, noSig, protocol.Integrity(fmt.Errorf("%w: own public key does not match share", ErrInconsistentKey))
	}

	if len(list) < threshold-1 || len(list) > len(p.Indices)-1 {
		return nil, noSig, protocol.Integrity(fmt.Errorf("%w: %d public keys for threshold %d", ErrCount, len(list), threshold))
	}

	type peerPoint struct {
		index party.Index
		point curve.Point
	}
	peers := make([]peerPoint, 0, len(list))
	seen := make(map[party.Index]bool, len(list))
	for i := range list {
		k := &list[i]
		if k.Index == self || !p.Indices.Contains(k.Index) || seen[k.Index] {
			return nil, noSig, protocol.Integrity(fmt.Errorf("%w: public key from %d", ErrUnexpectedIndex, k.Index))
		}
		seen[k.Index] = true
		pub, _ := p.Info.PublicKeyAt(k.Index)
		if !ecdsa.VerifyStruct(k.statement(), k.Signature, pub) {
			return nil, noSig, protocol.Blame(k.Index, ErrInvalidSignature)
		}
		if k.Polynomial != p.Polynomial {
			return nil, noSig, protocol.Blame(k.Index, ErrWrongPolynomial)
		}
		point, err := keyToPoint(p.Group, k.PubKey)
		if err != nil {
			return nil, noSig, &protocol.Error{Kind: protocol.KindCrypto, Culprit: k.Index, Err: err}
		}
		peers = append(peers, peerPoint{index: k.Index, point: point})
	}

	interpolation := make(map[party.Index]curve.Point, threshold)
	var extra []peerPoint
	for _, pp := range peers {
		if len(interpolation) < threshold {
			interpolation[pp.index] = pp.point
		} else {
			extra = append(extra, pp)
		}
	}
	ownIncluded := false
	if len(interpolation) < threshold {
		interpolation[self] = ownPoint
		ownIncluded = true
	}

	if !ownIncluded {
		extra = append(extra, peerPoint{index: self, point: ownPoint})
	}
	for _, pp := range extra {
		expected, err := polynomial.InterpolateExponent(p.Group, interpolation, pp.index)
		if err != nil {
			return nil, noSig, protocol.Integrity(err)
		}
		if !expected.Equal(pp.point) {
			culprit := pp.index
			if culprit == self {
				culprit = 0
			}
			return nil, noSig, protocol.Blame(culprit, fmt.Errorf("%w: at index %d", ErrInconsistentKey, pp.index))
		}
	}

	Q, err := polynomial.InterpolateExponent(p.Group, interpolation, 0)
	if err != nil {
		return nil, noSig, protocol.Integrity(err)
	}
	if p.Polynomial.IsZeroSharing() != Q.IsIdentity() {
		return nil, noSig, protocol.Integrity(fmt.Errorf("%w: unexpected group key for polynomial %s", ErrInconsistentKey, p.Polynomial))
	}
	groupKey, err := pointToKey(Q)
	if err != nil {
		return nil, noSig, protocol.Crypto(err)
	}

	ct, err := sealPersistent(p.Identity, secret)
	if err != nil {
		return nil, noSig, protocol.Crypto(err)
	}
	info := &GroupKeyInfo{
		GroupPubKey: groupKey,
		GroupShare:  Share{Index: self, EncShare: ct, OriginalLength: params.BytesScalar},
	}
	sig, err := ecdsa.SignStruct(info, p.Identity)
	if err != nil {
		return nil, noSig, protocol.Crypto(err)
	}
	return info, sig, nil
}

// DecryptGroupShare recovers the share persisted in info by GetGroupPublicKey.
func DecryptGroupShare(g curve.Curve, info *GroupKeyInfo, identity *ecdsa.PrivateKey, self party.Index) (curve.Scalar, error) {
	if info.GroupShare.Index != self {
		return nil, protocol.Integrity(fmt.Errorf("%w: persisted share belongs to %d", ErrShareNotFound, info.GroupShare.Index))
	}
	if info.GroupShare.OriginalLength != params.BytesScalar {
		return nil, protocol.Integrity(fmt.Errorf("%w: share length %d", ErrUnexpectedIndex, info.GroupShare.OriginalLength))
	}
	raw := identity.Bytes()
	defer wipe(raw[:])
	key := share.NewKey(raw)
	defer key.Wipe()
	plain, err := key.Open(info.GroupShare.EncShare)
	if err != nil {
		return nil, protocol.Crypto(err)
	}
	defer wipe(plain[:])
	s, err := curve.ScalarFromBytes(g, plain[:])
	if err != nil {
		return nil, protocol.Crypto(err)
	}
	return s, nil
}

func sealScalar(p *Params, recipient ecdsa.PublicKey, s curve.Scalar) (share.Ciphertext, error) {
	defer s.Zero()
	key, err := share.DeriveKey(p.Group, p.Identity, recipient)
	if err != nil {
		return share.Ciphertext{}, err
	}
	return seal(key, s)
}

func sealPersistent(identity *ecdsa.PrivateKey, s curve.Scalar) (share.Ciphertext, error) {
	raw := identity.Bytes()
	defer wipe(raw[:])
	return seal(share.NewKey(raw), s)
}

func seal(key *share.Key, s curve.Scalar) (share.Ciphertext, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return share.Ciphertext{}, err
	}
	var plain [share.PlaintextSize]byte
	copy(plain[:], data)
	defer wipe(plain[:])
	wipe(data)
	return key.Seal(plain)
}

func openScalar(p *Params, dealer ecdsa.PublicKey, s *Share) (curve.Scalar, error) {
	key, err := share.DeriveKey(p.Group, p.Identity, dealer)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()
	plain, err := key.Open(s.EncShare)
	if err != nil {
		return nil, err
	}
	defer wipe(plain[:])
	return curve.ScalarFromBytes(p.Group, plain[:])
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
