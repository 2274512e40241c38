package group

import "github.com/taurusgroup/mpc-vault/pkg/ecdsa"

// GetEntityInfoRequest carries the group parameters chosen on the host.
type GetEntityInfoRequest struct {
	_                 struct{} `cbor:",toarray"`
	Timestamp         uint64
	Threshold         uint16
	TotalParticipants uint16
}

type GetEntityInfoResponse struct {
	_          struct{} `cbor:",toarray"`
	EntityInfo EntityInfo
}

// VerifyParticipantInfoListRequest carries the contributions of the N-1 other devices.
type VerifyParticipantInfoListRequest struct {
	_    struct{} `cbor:",toarray"`
	List []ParticipantInfo
}

type VerifyParticipantInfoListResponse struct {
	_        struct{} `cbor:",toarray"`
	Verified bool
}

type GetGroupIDRequest struct {
	_ struct{} `cbor:",toarray"`
}

// GetGroupIDResponse is also the result of the group setup flow.
//
// GroupInfoSignature is the device's struct signature over GroupInfo, which lets the device
// recognise the group as its own in later flows.
type GetGroupIDResponse struct {
	_                  struct{} `cbor:",toarray"`
	GroupID            GroupID
	Signature          ecdsa.Signature
	GroupInfo          GroupInfo
	GroupInfoSignature ecdsa.Signature
}
