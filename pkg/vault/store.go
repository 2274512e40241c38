package vault

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
	"github.com/taurusgroup/mpc-vault/pkg/wire"
)

const (
	coinPrefix   = "coin:"
	recordPrefix = "record:"
)

// Store is a KeyStore backed by badger. It also persists ceremony outputs as records.
type Store struct {
	db *badger.DB
}

// OpenStore opens or creates a store in dir. An empty dir opens an in-memory store.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("vault: failed to create store dir: %w", err)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to open badger db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CoinData implements KeyStore.
func (s *Store) CoinData(walletID WalletID) ([32]byte, bool, error) {
	var out [32]byte
	found, err := s.get(coinKey(walletID), func(val []byte) error {
		if len(val) != len(out) {
			return fmt.Errorf("vault: corrupt coin data for wallet %s", walletID)
		}
		copy(out[:], val)
		return nil
	})
	return out, found, err
}

// SetCoinData implements KeyStore.
func (s *Store) SetCoinData(walletID WalletID, priv [32]byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(coinKey(walletID), priv[:])
	})
}

// SaveRecord stores the wire encoding of v under name.
func (s *Store) SaveRecord(name string, v interface{}) error {
	data, err := wire.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recordPrefix+name), data)
	})
}

// LoadRecord decodes the record stored under name into v, and returns false if there is none.
func (s *Store) LoadRecord(name string, v interface{}) (bool, error) {
	return s.get([]byte(recordPrefix+name), func(val []byte) error {
		return wire.Unmarshal(val, v)
	})
}

func (s *Store) get(key []byte, decode func([]byte) error) (bool, error) {
	found := true
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(decode)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func coinKey(walletID WalletID) []byte {
	return append([]byte(coinPrefix), walletID[:]...)
}
