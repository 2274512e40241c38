package dkg

import (
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
)

// GetShareDataRequest asks for the dealt batch of one polynomial.
type GetShareDataRequest struct {
	_          struct{} `cbor:",toarray"`
	Polynomial types.Polynomial
}

type GetShareDataResponse struct {
	_         struct{} `cbor:",toarray"`
	ShareData SignedShareData
}

// GetQiRequest relays the batches dealt by the other participants.
type GetQiRequest struct {
	_          struct{} `cbor:",toarray"`
	Polynomial types.Polynomial
	List       []SignedShareData
}

type GetQiResponse struct {
	_         struct{} `cbor:",toarray"`
	PublicKey SignedPublicKey
}

// GetGroupKeyRequest relays the individual public keys of the other participants.
type GetGroupKeyRequest struct {
	_          struct{} `cbor:",toarray"`
	Polynomial types.Polynomial
	List       []SignedPublicKey
}

type GetGroupKeyResponse struct {
	_            struct{} `cbor:",toarray"`
	GroupKeyInfo GroupKeyInfo
	Signature    ecdsa.Signature
}
