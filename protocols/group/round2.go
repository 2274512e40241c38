package group

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

type round2 struct {
	*round1
	entity      *EntityInfo
	fingerprint Fingerprint
}

// Finalize implements round.Round.
//
// Every peer fingerprint is displayed before the list is checked. Any failure is answered
// with Verified = false, and the ceremony must restart.
func (r *round2) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*VerifyParticipantInfoListRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}

	for i, info := range body.List {
		r.Display(fmt.Sprintf("Participant %d fingerprint", i+1), info.Fingerprint.String())
	}

	if err := VerifyParticipantInfoList(r.entity.Threshold, r.entity.TotalParticipants, r.entity, body.List); err != nil {
		return nil, &VerifyParticipantInfoListResponse{Verified: false}, protocol.Integrity(err)
	}

	infos := make([]ParticipantInfo, 0, len(body.List)+1)
	infos = append(infos, body.List...)
	infos = append(infos, ParticipantInfo{EntityInfo: *r.entity, Fingerprint: r.fingerprint})

	return &round3{round2: r, infos: infos}, &VerifyParticipantInfoListResponse{Verified: true}, nil
}

// Step implements round.Round.
func (round2) Step() protocol.Step { return protocol.StepVerifyParticipantInfoList }

// RequestContent implements round.Round.
func (round2) RequestContent() interface{} { return &VerifyParticipantInfoListRequest{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
