package group

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/math/sample"
	"github.com/taurusgroup/mpc-vault/pkg/vault"
)

// NewEntityInfo builds the local contribution to a group formation attempt, with a fresh nonce.
func NewEntityInfo(rand io.Reader, timestamp uint64, threshold, total uint16, walletID vault.WalletID, pub ecdsa.PublicKey, deviceID [32]byte) (*EntityInfo, error) {
	e := &EntityInfo{
		Timestamp:         timestamp,
		Threshold:         threshold,
		TotalParticipants: total,
		DeviceInfo: Participant{
			DeviceID: deviceID,
			WalletID: walletID,
			PubKey:   pub,
		},
	}
	copy(e.RandomNonce[:], sample.Bytes(rand, len(e.RandomNonce)))
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// VerifyParticipantInfoList checks the N-1 peer contributions against the local threshold and count.
//
// Every claimed fingerprint is recomputed. A single mismatch fails the whole list.
// own may be nil; when given, peers reusing its fingerprint or public key are rejected.
func VerifyParticipantInfoList(threshold, total uint16, own *EntityInfo, list []ParticipantInfo) error {
	if len(list)+1 != int(total) {
		return fmt.Errorf("%w: got %d peers, expected %d", ErrParticipantCount, len(list), int(total)-1)
	}
	fingerprints := make(map[Fingerprint]bool, total)
	keys := make(map[ecdsa.PublicKey]bool, total)
	if own != nil {
		f, err := own.Fingerprint()
		if err != nil {
			return err
		}
		fingerprints[f] = true
		keys[own.DeviceInfo.PubKey] = true
	}
	for i := range list {
		e := &list[i].EntityInfo
		if e.Threshold != threshold || e.TotalParticipants != total {
			return fmt.Errorf("%w: entry %d has %d of %d", ErrParameterMismatch, i, e.Threshold, e.TotalParticipants)
		}
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		f, err := e.Fingerprint()
		if err != nil {
			return err
		}
		if f != list[i].Fingerprint {
			return fmt.Errorf("%w: entry %d", ErrFingerprintMismatch, i)
		}
		if fingerprints[f] || keys[e.DeviceInfo.PubKey] {
			return fmt.Errorf("%w: entry %d", ErrDuplicateParticipant, i)
		}
		fingerprints[f] = true
		keys[e.DeviceInfo.PubKey] = true
	}
	return nil
}

// ComputeGroupID orders all N contributions by ascending fingerprint and returns the resulting
// GroupInfo and its GroupID.
//
// Byte order on the raw fingerprints is the same as lexical order on their lowercase hex encoding,
// so the arrival order of the contributions has no influence on the result.
func ComputeGroupID(threshold, total uint16, infos []ParticipantInfo) (*GroupInfo, GroupID, error) {
	if len(infos) != int(total) {
		return nil, GroupID{}, fmt.Errorf("%w: got %d, expected %d", ErrParticipantCount, len(infos), total)
	}
	sorted := make([]ParticipantInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Fingerprint[:], sorted[j].Fingerprint[:]) < 0
	})

	g := &GroupInfo{
		Threshold:         threshold,
		TotalParticipants: total,
		Participants:      make([]Participant, 0, len(sorted)),
	}
	for _, info := range sorted {
		g.Participants = append(g.Participants, info.EntityInfo.DeviceInfo)
	}
	if err := g.Validate(); err != nil {
		return nil, GroupID{}, err
	}
	id, err := g.ID()
	if err != nil {
		return nil, GroupID{}, err
	}
	return g, id, nil
}
