package group

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

type round1 struct {
	*round.Helper
	cfg Config
}

// Finalize implements round.Round.
//
// The user confirms the parameters, then the local EntityInfo is built and its fingerprint
// displayed for comparison with the other devices.
func (r *round1) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*GetEntityInfoRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if err := validThreshold(body.Threshold, body.TotalParticipants); err != nil {
		return nil, nil, protocol.Integrity(err)
	}

	if err := r.Confirm("Create MPC group", fmt.Sprintf("Threshold %d of %d participants", body.Threshold, body.TotalParticipants)); err != nil {
		return nil, nil, err
	}

	entity, err := NewEntityInfo(r.Rand(), body.Timestamp, body.Threshold, body.TotalParticipants, r.cfg.WalletID, r.PublicKey(), r.cfg.DeviceID)
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}
	fingerprint, err := entity.Fingerprint()
	if err != nil {
		return nil, nil, protocol.Crypto(err)
	}
	r.Display("Fingerprint", fingerprint.String())
	r.Logger().Info().Stringer("fingerprint", fingerprint).Msg("entity info created")

	return &round2{
		round1:      r,
		entity:      entity,
		fingerprint: fingerprint,
	}, &GetEntityInfoResponse{EntityInfo: *entity}, nil
}

// Step implements round.Round.
func (round1) Step() protocol.Step { return protocol.StepGetEntityInfo }

// RequestContent implements round.Round.
func (round1) RequestContent() interface{} { return &GetEntityInfoRequest{} }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
