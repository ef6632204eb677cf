package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"skillswap-server/models"
)

const (
	badgerUserPrefix = "user:"
	badgerSwapPrefix = "swap:"
)

// OpenBadger opens (or creates) the embedded database under path.
func OpenBadger(path string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

// BadgerUserStore stores users as JSON documents under "user:<id>".
// Find iterates the key range, so results come back in id order.
type BadgerUserStore struct {
	db *badger.DB
}

func NewBadgerUserStore(db *badger.DB) *BadgerUserStore {
	return &BadgerUserStore{db: db}
}

func (s *BadgerUserStore) Insert(_ context.Context, user *models.User) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(badgerUserPrefix + user.ID)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("user %s already exists", user.ID)
		}
		return setJSON(txn, key, user)
	})
}

func (s *BadgerUserStore) Replace(_ context.Context, user *models.User) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(badgerUserPrefix + user.ID)
		if _, err := txn.Get(key); err != nil {
			return notFoundOr(err)
		}
		return setJSON(txn, key, user)
	})
}

func (s *BadgerUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(badgerUserPrefix+id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *BadgerUserStore) Exists(_ context.Context, id string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerUserPrefix + id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BadgerUserStore) Find(_ context.Context, q UserQuery) ([]models.User, error) {
	users := []models.User{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, badgerUserPrefix, func(val []byte) error {
			var u models.User
			if err := json.Unmarshal(val, &u); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			if q.Matches(u) {
				users = append(users, u)
			}
			return nil
		})
	})
	return users, err
}

func (s *BadgerUserStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerUserPrefix + id))
	})
}

// BadgerSwapStore stores swap requests as JSON documents under "swap:<id>".
type BadgerSwapStore struct {
	db *badger.DB
}

func NewBadgerSwapStore(db *badger.DB) *BadgerSwapStore {
	return &BadgerSwapStore{db: db}
}

func (s *BadgerSwapStore) Insert(_ context.Context, swap *models.SwapRequest) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(badgerSwapPrefix + swap.ID)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("swap request %s already exists", swap.ID)
		}
		return setJSON(txn, key, swap)
	})
}

func (s *BadgerSwapStore) FindByID(_ context.Context, id string) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(badgerSwapPrefix+id), &swap)
	})
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

func (s *BadgerSwapStore) Find(_ context.Context, q SwapQuery) ([]models.SwapRequest, error) {
	swaps := []models.SwapRequest{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, badgerSwapPrefix, func(val []byte) error {
			var sw models.SwapRequest
			if err := json.Unmarshal(val, &sw); err != nil {
				return fmt.Errorf("decode swap request: %w", err)
			}
			if q.Matches(sw) {
				swaps = append(swaps, sw)
			}
			return nil
		})
	})
	return swaps, err
}

func (s *BadgerSwapStore) UpdateIfStatus(_ context.Context, swap *models.SwapRequest, expected models.SwapStatus) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(badgerSwapPrefix + swap.ID)
		if err := checkStatus(txn, key, expected); err != nil {
			return err
		}
		return setJSON(txn, key, swap)
	})
	return conflictAsStatusChanged(err)
}

func (s *BadgerSwapStore) DeleteIfStatus(_ context.Context, id string, expected models.SwapStatus) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(badgerSwapPrefix + id)
		if err := checkStatus(txn, key, expected); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return conflictAsStatusChanged(err)
}

func checkStatus(txn *badger.Txn, key []byte, expected models.SwapStatus) error {
	var current models.SwapRequest
	if err := getJSON(txn, key, &current); err != nil {
		return err
	}
	if current.Status != expected {
		return ErrStatusChanged
	}
	return nil
}

// conflictAsStatusChanged maps a lost optimistic transaction to the same
// outcome as an observed status mismatch.
func conflictAsStatusChanged(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return ErrStatusChanged
	}
	return err
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return notFoundOr(err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNoRecord
	}
	return err
}
