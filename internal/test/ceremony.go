package test

import (
	"context"
	"fmt"
	"time"

	"github.com/taurusgroup/mpc-vault/internal/bip32"
	"github.com/taurusgroup/mpc-vault/internal/params"
	"github.com/taurusgroup/mpc-vault/internal/types"
	"github.com/taurusgroup/mpc-vault/pkg/ecdsa"
	"github.com/taurusgroup/mpc-vault/pkg/party"
	"github.com/taurusgroup/mpc-vault/pkg/protocol"
	"github.com/taurusgroup/mpc-vault/protocols/childkey"
	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
	"github.com/taurusgroup/mpc-vault/protocols/keygen"
	"github.com/taurusgroup/mpc-vault/protocols/sign"
	"github.com/taurusgroup/mpc-vault/protocols/sign/mta"
)

// Setup is what the host keeps from group setup.
type Setup struct {
	GroupID   group.GroupID
	GroupInfo group.GroupInfo
	// Signatures are the GroupInfo signatures, by member position.
	Signatures []ecdsa.Signature
}

// Setup forms a group of all members with the given threshold.
func (h *Host) Setup(ctx context.Context, threshold int) (*Setup, error) {
	flow := protocol.FlowGroupSetup
	n := len(h.Members)
	if err := each(ctx, h.Members, func(ctx context.Context, _ int, m *Member) error {
		return m.Initiate(ctx, flow)
	}); err != nil {
		return nil, err
	}

	infos := make([]group.ParticipantInfo, n)
	request := &group.GetEntityInfoRequest{
		Timestamp:         uint64(time.Now().Unix()),
		Threshold:         uint16(threshold),
		TotalParticipants: uint16(n),
	}
	if err := each(ctx, h.Members, func(ctx context.Context, i int, m *Member) error {
		var resp group.GetEntityInfoResponse
		if err := m.Do(ctx, flow, protocol.StepGetEntityInfo, request, &resp); err != nil {
			return err
		}
		fingerprint, err := resp.EntityInfo.Fingerprint()
		if err != nil {
			return err
		}
		infos[i] = group.ParticipantInfo{EntityInfo: resp.EntityInfo, Fingerprint: fingerprint}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := each(ctx, h.Members, func(ctx context.Context, i int, m *Member) error {
		var resp group.VerifyParticipantInfoListResponse
		req := &group.VerifyParticipantInfoListRequest{List: others(infos, i)}
		if err := m.Do(ctx, flow, protocol.StepVerifyParticipantInfoList, req, &resp); err != nil {
			return err
		}
		if !resp.Verified {
			return fmt.Errorf("member %d: participant list rejected", i)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ids := make([]group.GetGroupIDResponse, n)
	if err := each(ctx, h.Members, func(ctx context.Context, i int, m *Member) error {
		if err := m.Do(ctx, flow, protocol.StepGetGroupID, &group.GetGroupIDRequest{}, &ids[i]); err != nil {
			return err
		}
		if !ecdsa.Verify(ids[i].GroupID[:], ids[i].Signature, m.PubKey) {
			return fmt.Errorf("member %d: invalid group ID signature", i)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	setup := &Setup{GroupID: ids[0].GroupID, GroupInfo: ids[0].GroupInfo, Signatures: make([]ecdsa.Signature, n)}
	for i, m := range h.Members {
		if ids[i].GroupID != setup.GroupID {
			return nil, fmt.Errorf("member %d: computed group ID %s, member 0 computed %s", i, ids[i].GroupID, setup.GroupID)
		}
		idx, ok := setup.GroupInfo.IndexOf(m.PubKey)
		if !ok {
			return nil, fmt.Errorf("member %d: missing from group", i)
		}
		m.Index = idx
		setup.Signatures[i] = ids[i].GroupInfoSignature
	}
	h.Log.Info().Stringer("group", setup.GroupID).Msg("group formed")
	return setup, nil
}

// KeyGen is what the host keeps from key generation.
type KeyGen struct {
	GroupKey ecdsa.PublicKey
	// Infos and Signatures are indexed by member position.
	Infos      []dkg.GroupKeyInfo
	Signatures []ecdsa.Signature
}

// KeyGen shares the persistent group key among all members.
func (h *Host) KeyGen(ctx context.Context, setup *Setup) (*KeyGen, error) {
	flow := protocol.FlowKeyGen
	if err := each(ctx, h.Members, func(ctx context.Context, i int, m *Member) error {
		if err := m.Initiate(ctx, flow); err != nil {
			return err
		}
		var resp keygen.PostGroupInfoResponse
		req := &keygen.PostGroupInfoRequest{GroupInfo: setup.GroupInfo, GroupInfoSignature: setup.Signatures[i]}
		return m.Do(ctx, flow, protocol.StepPostGroupInfo, req, &resp)
	}); err != nil {
		return nil, err
	}

	data, err := shareData(ctx, flow, h.Members, keygen.Polynomial)
	if err != nil {
		return nil, err
	}
	pubs, err := individualKeys(ctx, flow, h.Members, keygen.Polynomial, data)
	if err != nil {
		return nil, err
	}
	keys, err := groupKeys(ctx, flow, h.Members, keygen.Polynomial, pubs)
	if err != nil {
		return nil, err
	}

	kg := &KeyGen{GroupKey: keys[0].GroupKeyInfo.GroupPubKey}
	for i, k := range keys {
		if k.GroupKeyInfo.GroupPubKey != kg.GroupKey {
			return nil, fmt.Errorf("member %d: different group key", i)
		}
		kg.Infos = append(kg.Infos, k.GroupKeyInfo)
		kg.Signatures = append(kg.Signatures, k.Signature)
	}
	h.Log.Info().Stringer("key", kg.GroupKey).Msg("group key generated")
	return kg, nil
}

// Signing is what the host observed of a signing session.
type Signing struct {
	Signers party.IndexSlice
	// GroupKeys are the group keys of D, E, A, K, P.
	GroupKeys [params.Polynomials]ecdsa.PublicKey
	// Ranks maps each signer to its rank.
	Ranks map[party.Index]int
	// Commitments maps receiver then counterpart to the verified signature over its base keys.
	Commitments map[party.Index]map[party.Index]ecdsa.Signature
}

// Sign runs a signing session of message among the members at the given indices.
func (h *Host) Sign(ctx context.Context, setup *Setup, kg *KeyGen, message []byte, signers []party.Index) (*Signing, error) {
	flow := protocol.FlowSign
	ms, err := h.ByIndex(signers)
	if err != nil {
		return nil, err
	}

	if err = each(ctx, ms, func(ctx context.Context, _ int, m *Member) error {
		if err := m.Initiate(ctx, flow); err != nil {
			return err
		}
		approve := &sign.ApproveMessageRequest{GroupID: setup.GroupID, Message: message}
		if err := m.Do(ctx, flow, protocol.StepApproveMessage, approve, &sign.ApproveMessageResponse{}); err != nil {
			return err
		}
		post := &sign.PostGroupInfoRequest{
			GroupInfo:             setup.GroupInfo,
			GroupInfoSignature:    setup.Signatures[m.Position],
			GroupKeyInfo:          kg.Infos[m.Position],
			GroupKeyInfoSignature: kg.Signatures[m.Position],
		}
		if err := m.Do(ctx, flow, protocol.StepPostGroupInfo, post, &sign.PostGroupInfoResponse{}); err != nil {
			return err
		}
		indices := &sign.PostSequenceIndicesRequest{Indices: signers}
		return m.Do(ctx, flow, protocol.StepPostSequenceIndices, indices, &sign.PostSequenceIndicesResponse{})
	}); err != nil {
		return nil, err
	}

	polynomials := []types.Polynomial{types.PolynomialD, types.PolynomialE, types.PolynomialA, types.PolynomialK, types.PolynomialP}
	data := make([][]dkg.SignedShareData, len(polynomials))
	for _, p := range polynomials {
		if data[p], err = shareData(ctx, flow, ms, p); err != nil {
			return nil, err
		}
	}
	pubs := make([][]dkg.SignedPublicKey, len(polynomials))
	for _, p := range polynomials {
		if pubs[p], err = individualKeys(ctx, flow, ms, p, data[p]); err != nil {
			return nil, err
		}
	}
	result := &Signing{
		Signers:     party.NewIndexSlice(signers),
		Ranks:       make(map[party.Index]int),
		Commitments: make(map[party.Index]map[party.Index]ecdsa.Signature),
	}
	for _, p := range polynomials {
		keys, err := groupKeys(ctx, flow, ms, p, pubs[p])
		if err != nil {
			return nil, err
		}
		result.GroupKeys[p] = keys[0].GroupKeyInfo.GroupPubKey
	}

	commitments := make([]map[party.Index]ecdsa.Signature, len(ms))
	if err = each(ctx, ms, func(ctx context.Context, i int, m *Member) error {
		c, err := h.receive(ctx, m, result.Signers)
		commitments[i] = c
		return err
	}); err != nil {
		return nil, err
	}
	for i, m := range ms {
		rank, _ := result.Signers.Search(m.Index)
		result.Ranks[m.Index] = rank
		result.Commitments[m.Index] = commitments[i]
	}
	return result, nil
}

// receive runs the base key exchanges of m with every signer ranked before it.
func (h *Host) receive(ctx context.Context, m *Member, signers party.IndexSlice) (map[party.Index]ecdsa.Signature, error) {
	flow := protocol.FlowSign
	rank, _ := signers.Search(m.Index)
	out := make(map[party.Index]ecdsa.Signature, rank)
	for _, counterpart := range signers[:rank] {
		var init sign.MtaReceiverGetPkInitiateResponse
		if err := m.Do(ctx, flow, protocol.StepMtaReceiverGetPkInitiate, &sign.MtaReceiverGetPkInitiateRequest{Counterpart: counterpart}, &init); err != nil {
			return nil, err
		}
		keys := make([]ecdsa.PublicKey, init.Instances)
		for c := range keys {
			var resp sign.MtaReceiverGetPkResponse
			if err := m.Do(ctx, flow, protocol.StepMtaReceiverGetPk, &sign.MtaReceiverGetPkRequest{Counter: uint16(c)}, &resp); err != nil {
				return nil, err
			}
			keys[c] = resp.PubKey
		}
		var sig sign.MtaReceiverGetPkSigResponse
		if err := m.Do(ctx, flow, protocol.StepMtaReceiverGetPkSig, &sign.MtaReceiverGetPkSigRequest{}, &sig); err != nil {
			return nil, err
		}
		// the counterpart would run this check before sending
		if !mta.VerifyCommitment(h.Group, m.Index, counterpart, keys, sig.Signature, m.PubKey) {
			return nil, fmt.Errorf("member %d: invalid base key commitment for %d", m.Position, counterpart)
		}
		out[counterpart] = sig.Signature
	}
	return out, nil
}

// ChildKey derives the child key at path on the member at position.
func (h *Host) ChildKey(ctx context.Context, kg *KeyGen, position int, path bip32.Path) (ecdsa.PublicKey, error) {
	flow := protocol.FlowChildKey
	m := h.Members[position]
	if err := m.Initiate(ctx, flow); err != nil {
		return ecdsa.PublicKey{}, err
	}
	var resp childkey.GetChildPublicKeyResponse
	req := &childkey.GetChildPublicKeyRequest{
		GroupKeyInfo:   kg.Infos[position],
		Signature:      kg.Signatures[position],
		DerivationPath: path,
	}
	if err := m.Do(ctx, flow, protocol.StepGetChildPublicKey, req, &resp); err != nil {
		return ecdsa.PublicKey{}, err
	}
	return resp.PublicKey, nil
}

func others[T any](all []T, i int) []T {
	out := make([]T, 0, len(all)-1)
	out = append(out, all[:i]...)
	return append(out, all[i+1:]...)
}

func shareData(ctx context.Context, flow protocol.Flow, ms []*Member, p types.Polynomial) ([]dkg.SignedShareData, error) {
	out := make([]dkg.SignedShareData, len(ms))
	err := each(ctx, ms, func(ctx context.Context, i int, m *Member) error {
		var resp dkg.GetShareDataResponse
		if err := m.Do(ctx, flow, protocol.StepGetShareData, &dkg.GetShareDataRequest{Polynomial: p}, &resp); err != nil {
			return err
		}
		out[i] = resp.ShareData
		return nil
	})
	return out, err
}

func individualKeys(ctx context.Context, flow protocol.Flow, ms []*Member, p types.Polynomial, data []dkg.SignedShareData) ([]dkg.SignedPublicKey, error) {
	out := make([]dkg.SignedPublicKey, len(ms))
	err := each(ctx, ms, func(ctx context.Context, i int, m *Member) error {
		var resp dkg.GetQiResponse
		req := &dkg.GetQiRequest{Polynomial: p, List: others(data, i)}
		if err := m.Do(ctx, flow, protocol.StepGetQi, req, &resp); err != nil {
			return err
		}
		out[i] = resp.PublicKey
		return nil
	})
	return out, err
}

func groupKeys(ctx context.Context, flow protocol.Flow, ms []*Member, p types.Polynomial, pubs []dkg.SignedPublicKey) ([]dkg.GetGroupKeyResponse, error) {
	out := make([]dkg.GetGroupKeyResponse, len(ms))
	err := each(ctx, ms, func(ctx context.Context, i int, m *Member) error {
		req := &dkg.GetGroupKeyRequest{Polynomial: p, List: others(pubs, i)}
		return m.Do(ctx, flow, protocol.StepGetGroupKey, req, &out[i])
	})
	return out, err
}
