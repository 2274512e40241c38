package group

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

var (
	ErrZeroField            = errors.New("group: entity info has a zero field")
	ErrInvalidThreshold     = errors.New("group: invalid threshold")
	ErrParameterMismatch    = errors.New("group: threshold or participant count mismatch")
	ErrFingerprintMismatch  = errors.New("group: fingerprint mismatch")
	ErrDuplicateParticipant = errors.New("group: duplicate participant")
	ErrParticipantCount     = errors.New("group: wrong number of participants")
	ErrNotMember            = errors.New("group: public key is not a member of the group")
	ErrInvalidSignature     = errors.New("group: invalid group info signature")
)

// Participant is the public identity of one device in a group.
type Participant struct {
	_        struct{} `cbor:",toarray"`
	DeviceID [32]byte
	WalletID vault.WalletID
	PubKey   ecdsa.PublicKey
}

// EntityInfo is what a device contributes to a group formation attempt.
// It is immutable once fingerprinted.
type EntityInfo struct {
	_                 struct{} `cbor:",toarray"`
	Timestamp         uint64
	Threshold         uint16
	TotalParticipants uint16
	RandomNonce       [32]byte
	DeviceInfo        Participant
}

// Fingerprint identifies an EntityInfo, for out of band comparison by the users.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ParticipantInfo is a peer's EntityInfo along with the fingerprint it claims.
type ParticipantInfo struct {
	_           struct{} `cbor:",toarray"`
	EntityInfo  EntityInfo
	Fingerprint Fingerprint
}

// GroupInfo is the canonical description of a group: participants are ordered by ascending fingerprint.
type GroupInfo struct {
	_                 struct{} `cbor:",toarray"`
	Threshold         uint16
	TotalParticipants uint16
	Participants      []Participant
}

// GroupID is SHA-256 of the canonical encoding of a GroupInfo.
type GroupID [32]byte

func (id GroupID) String() string {
	return hex.EncodeToString(id[:])
}

func validThreshold(t, n uint16) error {
	if t == 0 || n == 0 {
		return ErrZeroField
	}
	if t > n || n > params.MaxParticipants {
		return fmt.Errorf("%w: %d of %d", ErrInvalidThreshold, t, n)
	}
	return nil
}

// Validate checks that no field of e is zero, and that the threshold fits the participant count.
func (e *EntityInfo) Validate() error {
	if e.Timestamp == 0 || e.RandomNonce == [32]byte{} {
		return ErrZeroField
	}
	d := &e.DeviceInfo
	if d.DeviceID == [32]byte{} || d.WalletID == (vault.WalletID{}) || d.PubKey == (ecdsa.PublicKey{}) {
		return ErrZeroField
	}
	return validThreshold(e.Threshold, e.TotalParticipants)
}

// Fingerprint returns SHA-256 of the canonical encoding of e.
func (e *EntityInfo) Fingerprint() (Fingerprint, error) {
	data, err := wire.Canonical(e)
	if err != nil {
		return Fingerprint{}, err
	}
	return sha256.Sum256(data), nil
}

// Validate checks the internal consistency of g.
func (g *GroupInfo) Validate() error {
	if err := validThreshold(g.Threshold, g.TotalParticipants); err != nil {
		return err
	}
	if len(g.Participants) != int(g.TotalParticipants) {
		return fmt.Errorf("%w: %d listed, %d expected", ErrParticipantCount, len(g.Participants), g.TotalParticipants)
	}
	seen := make(map[ecdsa.PublicKey]bool, len(g.Participants))
	for _, p := range g.Participants {
		if seen[p.PubKey] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.PubKey)
		}
		seen[p.PubKey] = true
	}
	return nil
}

// ID returns the GroupID of g.
func (g *GroupInfo) ID() (GroupID, error) {
	data, err := wire.Canonical(g)
	if err != nil {
		return GroupID{}, err
	}
	return sha256.Sum256(data), nil
}

// IndexOf returns the 1-based position of pub in the group.
func (g *GroupInfo) IndexOf(pub ecdsa.PublicKey) (party.Index, bool) {
	for i, p := range g.Participants {
		if p.PubKey == pub {
			return party.Index(i + 1), true
		}
	}
	return 0, false
}

// PublicKeyAt returns the public key of the participant at index.
func (g *GroupInfo) PublicKeyAt(index party.Index) (ecdsa.PublicKey, bool) {
	if index == 0 || int(index) > len(g.Participants) {
		return ecdsa.PublicKey{}, false
	}
	return g.Participants[index-1].PubKey, true
}

// Indices returns 1, …, N.
func (g *GroupInfo) Indices() party.IndexSlice {
	return party.Sequence(len(g.Participants))
}

// VerifySigned checks that g was signed by the holder of own, as returned at the end of group
// setup, and that own belongs to the group. It returns the index of own and the GroupID.
func (g *GroupInfo) VerifySigned(sig ecdsa.Signature, own ecdsa.PublicKey) (party.Index, GroupID, error) {
	if err := g.Validate(); err != nil {
		return 0, GroupID{}, err
	}
	if !ecdsa.VerifyStruct(g, sig, own) {
		return 0, GroupID{}, ErrInvalidSignature
	}
	self, ok := g.IndexOf(own)
	if !ok {
		return 0, GroupID{}, ErrNotMember
	}
	id, err := g.ID()
	if err != nil {
		return 0, GroupID{}, err
	}
	return self, id, nil
}
