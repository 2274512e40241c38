package group

import (
	"errors"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

type round3 struct {
	*round2
	// infos holds all N verified contributions, ours included, in arrival order.
	infos []ParticipantInfo
}

// Finalize implements round.Round.
//
// The canonical GroupInfo is built, and both its GroupID and the GroupInfo itself are signed
// with the long-term key.
func (r *round3) Finalize(req interface{}) (round.Round, interface{}, error) {
	if _, ok := req.(*GetGroupIDRequest); !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}

	info, id, err := ComputeGroupID(r.entity.Threshold, r.entity.TotalParticipants, r.infos)
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}
	if _, ok := info.IndexOf(r.PublicKey()); !ok {
		return nil, nil, protocol.Integrity(errors.New("own key missing from group"))
	}

	infoSignature, err := ecdsa.SignStruct(info, r.Identity())
	if err != nil {
		return nil, nil, protocol.Crypto(err)
	}
	response := &GetGroupIDResponse{
		GroupID:            id,
		Signature:          ecdsa.Sign(id[:], r.Identity()),
		GroupInfo:          *info,
		GroupInfoSignature: infoSignature,
	}
	r.Display("Group ID", id.String())
	r.Logger().Info().Stringer("group", id).Msg("group formed")

	return r.ResultRound(response), response, nil
}

// Step implements round.Round.
func (round3) Step() protocol.Step { return protocol.StepGetGroupID }

// RequestContent implements round.Round.
func (round3) RequestContent() interface{} { return &GetGroupIDRequest{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
