// Package repositories is the durable store: BadgerDB-backed typed
// repositories addressed by string keys. Values are the same JSON
// documents that travel on the wire.
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

const userKeyPrefix = "user:"

type IUserRepository interface {
	Get(id string) (*domain.User, error)
	Put(user *domain.User) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

func (r UserRepository) Get(id string) (*domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r UserRepository) Put(user *domain.User) error {
	bytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+user.ID), bytes)
	})
}
