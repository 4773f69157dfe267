package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

const roomKeyPrefix = "room:"

type IRoomRepository interface {
	Get(id string) (*domain.Room, error)
	Put(room *domain.Room) error
	Delete(id string) error
	FindPrivateByMembers(a, b string) (*domain.Room, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) RoomRepository {
	return RoomRepository{db: db}
}

func (r RoomRepository) Get(id string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(roomKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRoomNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r RoomRepository) Put(room *domain.Room) error {
	bytes, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(roomKeyPrefix+room.ID), bytes)
	})
}

func (r RoomRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(roomKeyPrefix + id))
	})
}

// FindPrivateByMembers scans the room prefix for the private room between
// the pair, in either member order. Returns (nil, nil) when no such room
// exists. Room cardinality is small enough that a prefix scan beats
// maintaining a secondary index.
func (r RoomRepository) FindPrivateByMembers(a, b string) (*domain.Room, error) {
	var found *domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(roomKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var room domain.Room
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &room)
			})
			if err != nil {
				return err
			}
			if room.Kind == domain.RoomPrivate && room.HasMember(a) && room.HasMember(b) {
				found = &room
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
