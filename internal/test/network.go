package test

import (
	"context"
	"errors"
	"sync"

	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

var ErrClosed = errors.New("test: link closed")

// Link connects the host to one device. Frames are wire encoded in both directions, so that the
// device decodes every query the way it would from a real transport.
//
// The device side is the protocol.Transport implementation; the host uses Query and Result.
type Link struct {
	queries chan []byte
	results chan []byte

	once   sync.Once
	closed chan struct{}
}

// NewLink returns an open Link.
func NewLink() *Link {
	return &Link{
		queries: make(chan []byte, 1),
		// a device may notify an abort without any pending query
		results: make(chan []byte, 4),
		closed:  make(chan struct{}),
	}
}

// Close unblocks both ends.
func (l *Link) Close() {
	l.once.Do(func() { close(l.closed) })
}

// Next implements protocol.Transport.
func (l *Link) Next(ctx context.Context) (*protocol.Query, error) {
	var data []byte
	if err := l.receive(ctx, l.queries, &data); err != nil {
		return nil, err
	}
	var q protocol.Query
	if err := wire.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Send implements protocol.Transport.
func (l *Link) Send(ctx context.Context, result *protocol.Result) error {
	return l.send(ctx, l.results, result)
}

// Query relays q to the device.
func (l *Link) Query(ctx context.Context, q *protocol.Query) error {
	return l.send(ctx, l.queries, q)
}

// Result waits for the next result of the device.
func (l *Link) Result(ctx context.Context) (*protocol.Result, error) {
	var data []byte
	if err := l.receive(ctx, l.results, &data); err != nil {
		return nil, err
	}
	var r protocol.Result
	if err := wire.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (l *Link) send(ctx context.Context, c chan<- []byte, v interface{}) error {
	data, err := wire.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c <- data:
		return nil
	case <-l.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Link) receive(ctx context.Context, c <-chan []byte, out *[]byte) error {
	select {
	case data := <-c:
		*out = data
		return nil
	case <-l.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
