package round

import (
	"context"
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

var ErrInternalResponse = errors.New("round: internal round produced a response")

type pending struct {
	step protocol.Step
	data interface{}
}

// Run drives a flow from first until its Output round, exchanging queries over t.
//
// The response to a query is held back until the following internal rounds have completed,
// so that the host always receives exactly one result per query: either the response, or an
// error notification if an internal round fails. The session is wiped on every exit path.
func Run(ctx context.Context, t protocol.Transport, s Session, first Round) (result interface{}, err error) {
	defer s.Wipe()

	flow := s.Flow()
	log := s.Logger()
	log.Info().Msg("start")

	var (
		out      *pending
		lastStep = protocol.StepInitiate
	)
	flush := func() error {
		if out == nil {
			return nil
		}
		data, err := wire.Marshal(out.data)
		if err != nil {
			return err
		}
		o := out
		out = nil
		return t.Send(ctx, &protocol.Result{Flow: flow, Step: o.step, Data: data})
	}
	abort := func(err error) error {
		var perr *protocol.Error
		if !errors.As(err, &perr) {
			perr = protocol.Integrity(err)
		}
		if perr.Flow == 0 {
			perr.Flow = flow
		}
		if perr.Step == protocol.StepNone {
			perr.Step = lastStep
		}
		log.Error().Err(perr).Str("kind", perr.Kind.String()).Uint16("culprit", uint16(perr.Culprit)).Msg("abort")
		return perr
	}

	r := first
	for {
		if output, ok := r.(*Output); ok {
			if err = flush(); err != nil {
				return nil, abort(protocol.Crypto(fmt.Errorf("send: %w", err)))
			}
			log.Info().Msg("done")
			return output.Result, nil
		}

		var req interface{}
		if step := r.Step(); step != protocol.StepNone {
			if err = flush(); err != nil {
				return nil, abort(protocol.NewError(protocol.KindSequence, fmt.Errorf("send: %w", err)))
			}
			q, err := protocol.Expect(ctx, t, flow, step)
			if err != nil {
				log.Warn().Err(err).Msg("unexpected query")
				return nil, abort(err)
			}
			lastStep = step
			req = r.RequestContent()
			if err = wire.Unmarshal(q.Data, req); err != nil {
				protocol.Notify(ctx, t, flow, step, protocol.KindDecoding)
				return nil, abort(protocol.NewError(protocol.KindDecoding, err))
			}
		}

		log.Debug().Uint16("round", uint16(r.Number())).Str("step", r.Step().String()).Msg("finalize")
		next, response, err := r.Finalize(req)
		if err == nil && response != nil && r.Step() == protocol.StepNone {
			err = ErrInternalResponse
		}
		if err != nil {
			if response != nil && r.Step() != protocol.StepNone {
				out = &pending{step: r.Step(), data: response}
				if ferr := flush(); ferr != nil {
					log.Warn().Err(ferr).Msg("send failed")
				}
			} else {
				// the held back response is replaced by the error notification
				out = nil
				protocol.Notify(ctx, t, flow, lastStep, protocol.KindOf(err))
			}
			return nil, abort(err)
		}
		if response != nil {
			out = &pending{step: r.Step(), data: response}
		}
		r = next
	}
}
