package sign

import (
	"fmt"

	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/internal/round"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/sign/mta"
)

// decryptRound recovers our share of the persistent group key. It has no request.
type decryptRound struct {
	*Session
}

// Finalize implements round.Round.
func (r *decryptRound) Finalize(interface{}) (round.Round, interface{}, error) {
	x, err := dkg.DecryptGroupShare(r.Group(), r.keyInfo, r.Identity(), r.self)
	if err != nil {
		return nil, nil, err
	}
	r.x = x
	return &startRound{Session: r.Session}, nil, nil
}

// Step implements round.Round.
func (decryptRound) Step() protocol.Step { return protocol.StepNone }

// RequestContent implements round.Round.
func (decryptRound) RequestContent() interface{} { return nil }

// Number implements round.Round.
func (decryptRound) Number() round.Number { return 19 }

// startRound computes our roles in the conversions. It has no request.
type startRound struct {
	*Session
}

// Finalize implements round.Round.
func (r *startRound) Finalize(interface{}) (round.Round, interface{}, error) {
	s, err := mta.NewSession(r.indices, r.self,
		r.secrets[types.PolynomialK], r.secrets[types.PolynomialA], r.x, r.secrets[types.PolynomialP])
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}
	r.mta = s
	r.Logger().Info().
		Int("rank", s.Rank).
		Int("sender", s.SenderTimes).
		Int("receiver", s.ReceiverTimes).
		Msg("mta started")

	return r.nextExchange(), nil, nil
}

// Step implements round.Round.
func (startRound) Step() protocol.Step { return protocol.StepNone }

// RequestContent implements round.Round.
func (startRound) RequestContent() interface{} { return nil }

// Number implements round.Round.
func (startRound) Number() round.Number { return 20 }

// nextExchange returns the first round of the next receiver exchange, or the output once all
// counterparts have been served.
func (s *Session) nextExchange() round.Round {
	done := len(s.receivers)
	counterparts := s.mta.Counterparts()
	if done < len(counterparts) {
		return &mtaInitiateRound{Session: s, counterpart: counterparts[done]}
	}
	return s.ResultRound(&Result{
		GroupID:       s.groupID,
		Indices:       s.mta.Indices,
		Self:          s.self,
		Rank:          s.mta.Rank,
		SenderTimes:   s.mta.SenderTimes,
		ReceiverTimes: s.mta.ReceiverTimes,
		GroupKeys:     s.groupKeys,
		Commitments:   append([]Commitment(nil), s.receivers...),
	})
}

// mtaInitiateRound opens the exchange with the next counterpart ranked before us.
type mtaInitiateRound struct {
	*Session
	counterpart party.Index
}

// Finalize implements round.Round.
func (r *mtaInitiateRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*MtaReceiverGetPkInitiateRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	if body.Counterpart != r.counterpart {
		return nil, nil, protocol.Integrity(fmt.Errorf("%w: got %d, expected %d", mta.ErrCounterpart, body.Counterpart, r.counterpart))
	}

	receiver, err := r.mta.NewReceiver(r.Rand(), r.Group(), r.counterpart)
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}
	r.receiver = receiver

	return &mtaPkRound{mtaInitiateRound: r}, &MtaReceiverGetPkInitiateResponse{
		Counterpart: r.counterpart,
		Instances:   params.OTParam,
	}, nil
}

// Step implements round.Round.
func (mtaInitiateRound) Step() protocol.Step { return protocol.StepMtaReceiverGetPkInitiate }

// RequestContent implements round.Round.
func (mtaInitiateRound) RequestContent() interface{} { return &MtaReceiverGetPkInitiateRequest{} }

// Number implements round.Round.
func (mtaInitiateRound) Number() round.Number { return 21 }

// mtaPkRound sends one base key per query, in order.
type mtaPkRound struct {
	*mtaInitiateRound
}

// Finalize implements round.Round.
func (r *mtaPkRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	body, ok := req.(*MtaReceiverGetPkRequest)
	if !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	pub, err := r.receiver.Next(body.Counter)
	if err != nil {
		return nil, nil, protocol.Integrity(err)
	}

	var next round.Round = r
	if r.receiver.Done() {
		next = &mtaSigRound{mtaInitiateRound: r.mtaInitiateRound}
	}
	return next, &MtaReceiverGetPkResponse{Counter: body.Counter, PubKey: pub}, nil
}

// Step implements round.Round.
func (mtaPkRound) Step() protocol.Step { return protocol.StepMtaReceiverGetPk }

// RequestContent implements round.Round.
func (mtaPkRound) RequestContent() interface{} { return &MtaReceiverGetPkRequest{} }

// Number implements round.Round.
func (mtaPkRound) Number() round.Number { return 22 }

// mtaSigRound commits to the base keys sent to the counterpart.
type mtaSigRound struct {
	*mtaInitiateRound
}

// Finalize implements round.Round.
func (r *mtaSigRound) Finalize(req interface{}) (round.Round, interface{}, error) {
	if _, ok := req.(*MtaReceiverGetPkSigRequest); !ok {
		return nil, nil, protocol.Integrity(round.ErrInvalidContent)
	}
	sig, err := r.receiver.Sign(r.Identity())
	if err != nil {
		return nil, nil, protocol.Crypto(err)
	}
	r.receiver.Wipe()
	r.receiver = nil
	r.receivers = append(r.receivers, Commitment{Counterpart: r.counterpart, Signature: sig})
	r.Logger().Debug().Uint16("counterpart", uint16(r.counterpart)).Msg("base keys committed")

	return r.nextExchange(), &MtaReceiverGetPkSigResponse{Signature: sig}, nil
}

// Step implements round.Round.
func (mtaSigRound) Step() protocol.Step { return protocol.StepMtaReceiverGetPkSig }

// RequestContent implements round.Round.
func (mtaSigRound) RequestContent() interface{} { return &MtaReceiverGetPkSigRequest{} }

// Number implements round.Round.
func (mtaSigRound) Number() round.Number { return 23 }
