package round

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

type scripted struct {
	queries []*protocol.Query
	sent    []*protocol.Result
}

func (s *scripted) Next(context.Context) (*protocol.Query, error) {
	if len(s.queries) == 0 {
		return nil, io.EOF
	}
	q := s.queries[0]
	s.queries = s.queries[1:]
	return q, nil
}

func (s *scripted) Send(_ context.Context, r *protocol.Result) error {
	s.sent = append(s.sent, r)
	return nil
}

// unreachable accepts queries but fails every send.
type unreachable struct {
	scripted
}

func (*unreachable) Send(context.Context, *protocol.Result) error {
	return errors.New("link down")
}

type testSession struct {
	log   zerolog.Logger
	wiped bool
}

func (s *testSession) Flow() protocol.Flow     { return protocol.FlowKeyGen }
func (s *testSession) Logger() *zerolog.Logger { return &s.log }
func (s *testSession) Wipe()                   { s.wiped = true }

type value struct {
	_ struct{} `cbor:",toarray"`
	V uint8
}

// echo answers a GetShareData query with V+1, then moves to next.
type echo struct {
	next Round
}

func (echo) Number() Number              { return 1 }
func (echo) Step() protocol.Step         { return protocol.StepGetShareData }
func (echo) RequestContent() interface{} { return &value{} }
func (r *echo) Finalize(req interface{}) (Round, interface{}, error) {
	return r.next, &value{V: req.(*value).V + 1}, nil
}

// internal runs without a query.
type internal struct {
	err      error
	response interface{}
}

func (internal) Number() Number              { return 2 }
func (internal) Step() protocol.Step         { return protocol.StepNone }
func (internal) RequestContent() interface{} { return nil }
func (r *internal) Finalize(interface{}) (Round, interface{}, error) {
	if r.err != nil || r.response != nil {
		return nil, r.response, r.err
	}
	return &Output{Result: "done"}, nil, nil
}

// answerAndFail answers its query, then fails the flow.
type answerAndFail struct{}

func (answerAndFail) Number() Number              { return 1 }
func (answerAndFail) Step() protocol.Step         { return protocol.StepGetShareData }
func (answerAndFail) RequestContent() interface{} { return &value{} }
func (answerAndFail) Finalize(interface{}) (Round, interface{}, error) {
	return nil, &value{V: 7}, protocol.NewError(protocol.KindRejected, errors.New("declined"))
}

func query(t *testing.T, step protocol.Step, v uint8) *protocol.Query {
	data, err := wire.Marshal(&value{V: v})
	require.NoError(t, err)
	return &protocol.Query{Flow: protocol.FlowKeyGen, Step: step, Data: data}
}

func TestRun_Success(t *testing.T) {
	tr := &scripted{queries: []*protocol.Query{query(t, protocol.StepGetShareData, 41)}}
	s := &testSession{log: zerolog.Nop()}

	result, err := Run(context.Background(), tr, s, &echo{next: &internal{}})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.True(t, s.wiped)

	require.Len(t, tr.sent, 1)
	assert.Nil(t, tr.sent[0].Error)
	assert.Equal(t, protocol.StepGetShareData, tr.sent[0].Step)
	var got value
	require.NoError(t, wire.Unmarshal(tr.sent[0].Data, &got))
	assert.Equal(t, uint8(42), got.V)
}

func TestRun_InternalFailureReplacesResponse(t *testing.T) {
	tr := &scripted{queries: []*protocol.Query{query(t, protocol.StepGetShareData, 1)}}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, &echo{next: &internal{err: protocol.Crypto(errors.New("boom"))}})
	require.Error(t, err)
	assert.Equal(t, protocol.KindCrypto, protocol.KindOf(err))
	assert.True(t, s.wiped)

	require.Len(t, tr.sent, 1)
	require.NotNil(t, tr.sent[0].Error)
	assert.Equal(t, protocol.CodeCryptoFailure, tr.sent[0].Error.Code)
	assert.Equal(t, protocol.StepGetShareData, tr.sent[0].Step)
}

func TestRun_InternalResponse(t *testing.T) {
	tr := &scripted{queries: []*protocol.Query{query(t, protocol.StepGetShareData, 1)}}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, &echo{next: &internal{response: &value{}}})
	assert.True(t, errors.Is(err, ErrInternalResponse))
	require.Len(t, tr.sent, 1)
	assert.NotNil(t, tr.sent[0].Error)
}

func TestRun_WrongStep(t *testing.T) {
	tr := &scripted{queries: []*protocol.Query{query(t, protocol.StepGetQi, 1)}}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, &echo{next: &internal{}})
	assert.Equal(t, protocol.KindSequence, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, protocol.CodeInvalidQuery, tr.sent[0].Error.Code)
	assert.True(t, s.wiped)
}

func TestRun_Undecodable(t *testing.T) {
	q := query(t, protocol.StepGetShareData, 1)
	q.Data = []byte{0xff, 0x00}
	tr := &scripted{queries: []*protocol.Query{q}}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, &echo{next: &internal{}})
	assert.Equal(t, protocol.KindDecoding, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, protocol.CodeDecodingFailed, tr.sent[0].Error.Code)
}

func TestRun_TransportClosed(t *testing.T) {
	tr := &scripted{}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, &echo{next: &internal{}})
	assert.Equal(t, protocol.KindSequence, protocol.KindOf(err))
	assert.True(t, s.wiped)
}

func TestRun_ResponseWithError(t *testing.T) {
	tr := &scripted{queries: []*protocol.Query{query(t, protocol.StepGetShareData, 1)}}
	s := &testSession{log: zerolog.Nop()}

	_, err := Run(context.Background(), tr, s, answerAndFail{})
	assert.Equal(t, protocol.KindRejected, protocol.KindOf(err))
	require.Len(t, tr.sent, 1)
	assert.Nil(t, tr.sent[0].Error)
	var got value
	require.NoError(t, wire.Unmarshal(tr.sent[0].Data, &got))
	assert.Equal(t, uint8(7), got.V)
}

func TestRun_ResponseWithError_SendFails(t *testing.T) {
	tr := &unreachable{scripted{queries: []*protocol.Query{query(t, protocol.StepGetShareData, 1)}}}
	var buf bytes.Buffer
	s := &testSession{log: zerolog.New(&buf)}

	_, err := Run(context.Background(), tr, s, answerAndFail{})
	assert.Equal(t, protocol.KindRejected, protocol.KindOf(err))
	assert.True(t, s.wiped)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "link down")
	assert.Contains(t, buf.String(), "send failed")
}
