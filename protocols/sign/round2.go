package sign

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

var (
	ErrGroupMismatch   = errors.New("sign: group info does not match the approved group ID")
	ErrGroupKeyInfo    = errors.New("sign: invalid group key info")
	ErrSequenceIndices = errors.New("sign: invalid signer indices")
)

type round2 struct {
	*round1
}

// Finalize implements round.Round.
//
// Both the group and its key were signed by this device in earlier flows, so they are checked
// against our own long-term key rather than any peer's.
func (r *round2) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*PostGroupInfoRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}

	info := body.GroupInfo
	self, id, err := info.VerifySigned(body.GroupInfoSignature, r.PublicKey())
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}
	if id != r.groupID {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %s", ErrGroupMismatch, id))
	}

	keyInfo := body.GroupKeyInfo
	if !ecdsa.VerifyStruct(&keyInfo, body.GroupKeyInfoSignature, r.PublicKey()) {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: signature", ErrGroupKeyInfo))
	}
	if keyInfo.GroupShare.Index != self {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: share of %d", ErrGroupKeyInfo, keyInfo.GroupShare.Index))
	}
	if _, err = keyInfo.GroupPubKey.Point(r.Group()); err != nil {
		return nil, nil, protocol.Crypto(fmt.Errorf("%w: %v", ErrGroupKeyInfo, err))
	}

	r.info = &info
	r.keyInfo = &keyInfo
	r.self = self
	r.Logger().Info().Uint16("index", uint16(self)).Stringer("key", keyInfo.GroupPubKey).Msg("group accepted")

	return &round3{round2: r}, &PostGroupInfoResponse{Accepted: true}, nil
}

// Step implements round.Round.
func (round2) Step() protocol.Step { return protocol.StepPostGroupInfo }

// RequestContent implements round.Round.
func (round2) RequestContent() interface{} { return &PostGroupInfoRequest{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }

type round3 struct {
	*round2
}

// Finalize implements round.Round.
//
// Exactly T distinct signers must be selected, ourselves included.
func (r *round3) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*PostSequenceIndicesRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}

	if len(body.Indices) != int(r.info.Threshold) {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %d signers for threshold %d", ErrSequenceIndices, len(body.Indices), r.info.Threshold))
	}
	indices := party.NewIndexSlice(body.Indices)
	if !indices.Valid(len(r.info.Participants)) {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: %v", ErrSequenceIndices, body.Indices))
	}
	if !indices.Contains(r.self) {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: own index %d missing", ErrSequenceIndices, r.self))
	}
	r.indices = indices
	r.Logger().Info().Str("signers", fmt.Sprint(indices)).Msg("signers selected")

	return &shareRound{Session: r.Session, polynomial: 0}, &PostSequenceIndicesResponse{Accepted: true}, nil
}

// Step implements round.Round.
func (round3) Step() protocol.Step { return protocol.StepPostSequenceIndices }

// RequestContent implements round.Round.
func (round3) RequestContent() interface{} { return &PostSequenceIndicesRequest{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
