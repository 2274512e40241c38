package test

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/mpc-vault/protocols/dkg"
	"github.com/taurusgroup/mpc-vault/protocols/group"
)

var ErrNoRecord = errors.New("test: no record")

func groupRecord(id group.GroupID) string { return "group/" + id.String() }
func keyRecord(id group.GroupID) string   { return "key/" + id.String() }

// SaveRecords stores the group info and each member's own group key info in its store.
func (h *Host) SaveRecords(setup *Setup, kg *KeyGen) error {
	for i, m := range h.Members {
		if err := m.Store.SaveRecord(groupRecord(setup.GroupID), &setup.GroupInfo); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
		if err := m.Store.SaveRecord(keyRecord(setup.GroupID), &kg.Infos[i]); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
	}
	return nil
}

// LoadRecords reads back what SaveRecords stored for the member at position.
func (h *Host) LoadRecords(position int, id group.GroupID) (*group.GroupInfo, *dkg.GroupKeyInfo, error) {
	m := h.Members[position]
	var info group.GroupInfo
	found, err := m.Store.LoadRecord(groupRecord(id), &info)
	if err != nil {
		return nil, nil, fmt.Errorf("member %d: %w", position, err)
	}
	if !found {
		return nil, nil, fmt.Errorf("member %d: %w for group %s", position, ErrNoRecord, id)
	}
	var key dkg.GroupKeyInfo
	found, err = m.Store.LoadRecord(keyRecord(id), &key)
	if err != nil {
		return nil, nil, fmt.Errorf("member %d: %w", position, err)
	}
	if !found {
		return nil, nil, fmt.Errorf("member %d: %w for key %s", position, ErrNoRecord, id)
	}
	return &info, &key, nil
}
