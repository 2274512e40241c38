package protocol

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/pkg/party"
)

// ErrorKind is the coarse class of a CommonError, as seen by the host.
type ErrorKind uint8

const (
	ErrorKindCorruptData ErrorKind = iota + 1
	ErrorKindUserRejection
)

// ErrorCode refines an ErrorKind.
type ErrorCode uint8

const (
	CodeInvalidQuery ErrorCode = iota + 1
	CodeDecodingFailed
	CodeInvalidRequest
	CodeInvalidData
	CodeCryptoFailure
	CodeRejected
)

// CommonError is sent to the host in place of a response whenever a flow aborts.
type CommonError struct {
	_    struct{} `cbor:",toarray"`
	Kind ErrorKind
	Code ErrorCode
}

func (e *CommonError) String() string {
	return fmt.Sprintf("kind %d code %d", e.Kind, e.Code)
}

// Kind classifies why a flow aborted.
type Kind uint8

const (
	// KindSequence is a query with an unexpected tag, or no query at all.
	KindSequence Kind = iota + 1
	// KindDecoding is a query whose payload could not be parsed.
	KindDecoding
	// KindIntegrity is a signature, fingerprint, or count mismatch.
	KindIntegrity
	// KindCrypto is a failed encryption, decryption, or point decoding.
	KindCrypto
	// KindRejected is a confirmation declined by the user.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindDecoding:
		return "decoding"
	case KindIntegrity:
		return "integrity"
	case KindCrypto:
		return "crypto"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Common returns the error reported to the host for this kind.
func (k Kind) Common() *CommonError {
	switch k {
	case KindSequence:
		return &CommonError{Kind: ErrorKindCorruptData, Code: CodeInvalidQuery}
	case KindDecoding:
		return &CommonError{Kind: ErrorKindCorruptData, Code: CodeDecodingFailed}
	case KindCrypto:
		return &CommonError{Kind: ErrorKindCorruptData, Code: CodeCryptoFailure}
	case KindRejected:
		return &CommonError{Kind: ErrorKindUserRejection, Code: CodeRejected}
	default:
		return &CommonError{Kind: ErrorKindCorruptData, Code: CodeInvalidData}
	}
}

// Error is a custom error for flows which contains information about the step in which it occurred,
// and the party responsible.
type Error struct {
	Kind Kind
	Flow Flow
	// Step is the step of the last query received when the error occurred.
	Step Step
	// Culprit is 0 if the identity of the misbehaving party cannot be known
	Culprit party.Index
	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.Culprit == 0 {
		return fmt.Sprintf("%s/%s: %s: %s", e.Flow, e.Step, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s/%s: %s: party %d: %s", e.Flow, e.Step, e.Kind, e.Culprit, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Integrity wraps err as a data integrity failure.
func Integrity(err error) *Error {
	return NewError(KindIntegrity, err)
}

// Crypto wraps err as a cryptographic operation failure.
func Crypto(err error) *Error {
	return NewError(KindCrypto, err)
}

// Blame wraps err as a data integrity failure caused by culprit.
func Blame(culprit party.Index, err error) *Error {
	return &Error{Kind: KindIntegrity, Culprit: culprit, Err: err}
}

var ErrRejected = errors.New("protocol: rejected by user")

// KindOf returns the Kind of err, defaulting to KindIntegrity.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIntegrity
}
