package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	List(roomID string, cursor *string) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// Store persists a message. The key is "msg:{room_id}:{timestamp_padded}:{id}":
//  1. 19-digit zero padding makes lexicographic order chronological.
//  2. The message id disambiguates two messages landing on the same
//     millisecond.
func (m MessageRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.RoomID,
		message.Timestamp,
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List retrieves a room's messages newest-first using a reverse prefix
// scan, stopping at the configured limit. The returned cursor resumes the
// scan on the next call.
func (m MessageRepository) List(roomID string, cursor *string) ([]domain.Message, *string, error) {
	var raw [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", roomID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		if cursor == nil {
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999:~")...)
		} else {
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(raw) == *m.limitMessages {
				m.log.Debug("message page limit reached", "limit", *m.limitMessages)
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var message domain.Message
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}
