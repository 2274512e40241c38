package round

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/taurusgroup/mpc-vault/pkg/protocol"
)

// Round is one state of a flow.
//
// A round either waits for exactly one host query (Step returns the expected tag), or runs
// internally without any query (Step returns protocol.StepNone).
type Round interface {
	// Number returns the position of this round in its flow, starting at 1.
	Number() Number

	// Step returns the tag of the query this round consumes.
	Step() protocol.Step

	// RequestContent returns an empty request struct, into which the query payload is decoded.
	// Internal rounds return nil.
	RequestContent() interface{}

	// Finalize processes the decoded request.
	//
	// It returns the next round, and the response to the query, if any. Internal rounds never respond.
	// When an error is returned, the flow aborts. If a response is returned along with the error,
	// the response is sent in place of an error notification.
	//
	// In the last round, Finalize should return
	//   &round.Output{Result: result}, response, nil
	Finalize(req interface{}) (Round, interface{}, error)
}

// Number is the index of the current round.
// 0 indicates the output round, 1 is the first round.
type Number uint16

// WriteTo implements io.WriterTo interface.
func (i Number) WriteTo(w io.Writer) (int64, error) {
	err := binary.Write(w, binary.BigEndian, uint16(i))
	return 2, err
}

// Domain implements hash.WriterToWithDomain.
func (Number) Domain() string {
	return "Round Number"
}

// Output is an empty round containing the output of the flow.
type Output struct {
	Result interface{}
}

func (*Output) Number() Number              { return 0 }
func (*Output) Step() protocol.Step         { return protocol.StepNone }
func (*Output) RequestContent() interface{} { return nil }
func (r *Output) Finalize(interface{}) (Round, interface{}, error) {
	return r, nil, nil
}

// ErrInvalidContent is returned when a round receives a request of the wrong type.
var ErrInvalidContent = errors.New("round: request content has the wrong type")
