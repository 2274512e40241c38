package sign

import (
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

// ApproveMessageRequest carries what the user must approve.
type ApproveMessageRequest struct {
	_       struct{} `cbor:",toarray"`
	GroupID group.GroupID
	Message []byte
}

type ApproveMessageResponse struct {
	_        struct{} `cbor:",toarray"`
	Approved bool
}

// PostGroupInfoRequest replays the outputs of group setup and key generation,
// each signed by this device.
type PostGroupInfoRequest struct {
	_                     struct{} `cbor:",toarray"`
	GroupInfo             group.GroupInfo
	GroupInfoSignature    ecdsa.Signature
	GroupKeyInfo          dkg.GroupKeyInfo
	GroupKeyInfoSignature ecdsa.Signature
}

type PostGroupInfoResponse struct {
	_        struct{} `cbor:",toarray"`
	Accepted bool
}

// PostSequenceIndicesRequest selects the T signers.
type PostSequenceIndicesRequest struct {
	_       struct{} `cbor:",toarray"`
	Indices []party.Index
}

type PostSequenceIndicesResponse struct {
	_        struct{} `cbor:",toarray"`
	Accepted bool
}

// MtaReceiverGetPkInitiateRequest opens the exchange with one counterpart.
type MtaReceiverGetPkInitiateRequest struct {
	_           struct{} `cbor:",toarray"`
	Counterpart party.Index
}

type MtaReceiverGetPkInitiateResponse struct {
	_           struct{} `cbor:",toarray"`
	Counterpart party.Index
	Instances   uint16
}

type MtaReceiverGetPkRequest struct {
	_       struct{} `cbor:",toarray"`
	Counter uint16
}

type MtaReceiverGetPkResponse struct {
	_       struct{} `cbor:",toarray"`
	Counter uint16
	PubKey  ecdsa.PublicKey
}

type MtaReceiverGetPkSigRequest struct {
	_ struct{} `cbor:",toarray"`
}

// MtaReceiverGetPkSigResponse carries the signature over mta.Commitment.
type MtaReceiverGetPkSigResponse struct {
	_         struct{} `cbor:",toarray"`
	Signature ecdsa.Signature
}
