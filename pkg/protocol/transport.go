package protocol

import (
	"context"
	"fmt"
	"time"
)

// notifyTimeout bounds the delivery of an abort notification once the flow's context is done.
const notifyTimeout = time.Second

// Transport is the device side of the host link.
//
// Next blocks until the host relays a query, the link fails, or ctx is done.
// Timeouts are expected to be enforced through ctx.
type Transport interface {
	Next(ctx context.Context) (*Query, error)
	Send(ctx context.Context, result *Result) error
}

// Expect waits for the next query and checks that it carries the given tag.
//
// Any other outcome, including a transport failure or cancellation, is reported to the host as an
// invalid query and returned as a sequencing error.
func Expect(ctx context.Context, t Transport, flow Flow, step Step) (*Query, error) {
	q, err := t.Next(ctx)
	if err != nil {
		Notify(ctx, t, flow, step, KindSequence)
		return nil, &Error{Kind: KindSequence, Flow: flow, Step: step, Err: fmt.Errorf("waiting for query: %w", err)}
	}
	if q.Flow != flow || q.Step != step {
		Notify(ctx, t, flow, step, KindSequence)
		return nil, &Error{
			Kind: KindSequence,
			Flow: flow,
			Step: step,
			Err:  fmt.Errorf("expected %s/%s, got %s/%s", flow, step, q.Flow, q.Step),
		}
	}
	return q, nil
}

// Notify sends the CommonError matching kind. Delivery is best effort, since the flow is aborting anyway.
func Notify(ctx context.Context, t Transport, flow Flow, step Step, kind Kind) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
	}
	_ = t.Send(ctx, &Result{Flow: flow, Step: step, Error: kind.Common()})
}
