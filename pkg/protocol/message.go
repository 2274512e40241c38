package protocol

import "fmt"

// Flow identifies one of the ceremonies a device can take part in.
type Flow uint8

const (
	FlowGroupSetup Flow = iota + 1
	FlowKeyGen
	FlowSign
	FlowChildKey
)

func (f Flow) String() string {
	switch f {
	case FlowGroupSetup:
		return "group-setup"
	case FlowKeyGen:
		return "keygen"
	case FlowSign:
		return "sign"
	case FlowChildKey:
		return "child-key"
	default:
		return fmt.Sprintf("flow(%d)", uint8(f))
	}
}

// Step is the discriminant tag of a query within a flow.
type Step uint8

const (
	// StepNone is used by rounds that run without a host query.
	StepNone Step = iota
	StepInitiate
	StepGetEntityInfo
	StepVerifyParticipantInfoList
	StepGetGroupID
	StepApproveMessage
	StepPostGroupInfo
	StepPostSequenceIndices
	StepGetShareData
	StepGetQi
	StepGetGroupKey
	StepMtaReceiverGetPkInitiate
	StepMtaReceiverGetPk
	StepMtaReceiverGetPkSig
	StepGetChildPublicKey
)

var stepNames = map[Step]string{
	StepNone:                      "none",
	StepInitiate:                  "initiate",
	StepGetEntityInfo:             "get-entity-info",
	StepVerifyParticipantInfoList: "verify-participant-info-list",
	StepGetGroupID:                "get-group-id",
	StepApproveMessage:            "approve-message",
	StepPostGroupInfo:             "post-group-info",
	StepPostSequenceIndices:       "post-sequence-indices",
	StepGetShareData:              "get-share-data",
	StepGetQi:                     "get-qi",
	StepGetGroupKey:               "get-group-key",
	StepMtaReceiverGetPkInitiate:  "mta-receiver-get-pk-initiate",
	StepMtaReceiverGetPk:          "mta-receiver-get-pk",
	StepMtaReceiverGetPkSig:       "mta-receiver-get-pk-sig",
	StepGetChildPublicKey:         "get-child-public-key",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// Query is a request relayed by the host. Data holds the wire encoding of the step's request struct.
type Query struct {
	_    struct{} `cbor:",toarray"`
	Flow Flow
	Step Step
	Data []byte
}

// Result is the device's answer to exactly one Query.
//
// Either Data or Error is set.
type Result struct {
	_     struct{} `cbor:",toarray"`
	Flow  Flow
	Step  Step
	Data  []byte
	Error *CommonError
}

func (r *Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s/%s: error %s", r.Flow, r.Step, r.Error)
	}
	return fmt.Sprintf("%s/%s: %d bytes", r.Flow, r.Step, len(r.Data))
}
