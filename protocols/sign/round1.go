package sign

import (
	"encoding/hex"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

type round1 struct {
	*Session
}

// Finalize implements round.Round.
//
// The user must recognise both the group and the message.
func (r *round1) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*ApproveMessageRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}

	if err := r.Confirm("Match the group ID", body.GroupID.String()); err != nil {
		return nil, nil, err
	}
	if err := r.Confirm("Match the message to sign", hex.EncodeToString(body.Message)); err != nil {
		return nil, nil, err
	}
	r.groupID = body.GroupID
	r.message = append([]byte(nil), body.Message...)
	r.Logger().Info().Stringer("group", r.groupID).Int("size", len(r.message)).Msg("message approved")

	return &round2{round1: r}, &ApproveMessageResponse{Approved: true}, nil
}

// Step implements round.Round.
func (round1) Step() protocol.Step { return protocol.StepApproveMessage }

// RequestContent implements round.Round.
func (round1) RequestContent() interface{} { return &ApproveMessageRequest{} }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
