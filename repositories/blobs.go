package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "chat-relay/errors"
)

const (
	blobMetaPrefix = "blob:meta:"
	blobDataPrefix = "blob:data:"
)

// BlobMeta describes a stored binary payload. Instants are epoch
// milliseconds like everywhere else on the wire.
type BlobMeta struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"type"`
	Size        int64  `json:"size"`
	UploadedAt  int64  `json:"uploadTime"`
	ExpiresAt   int64  `json:"expiresAt"`
}

type IBlobRepository interface {
	Put(meta BlobMeta, data []byte, ttl time.Duration) error
	GetMeta(id string) (*BlobMeta, error)
	GetData(id string) ([]byte, error)
	Delete(id string) error
	ListMeta() ([]BlobMeta, error)
}

type BlobRepository struct {
	db *badger.DB
}

func NewBlobRepository(db *badger.DB) BlobRepository {
	return BlobRepository{db: db}
}

// Put writes metadata and payload in one transaction, both carrying the
// backing store's native TTL. Expiry is additionally checked on read;
// the TTL is a second line of defense, not the source of truth.
func (r BlobRepository) Put(meta BlobMeta, data []byte, ttl time.Duration) error {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		metaEntry := badger.NewEntry([]byte(blobMetaPrefix+meta.ID), metaBytes).WithTTL(ttl)
		if err := txn.SetEntry(metaEntry); err != nil {
			return err
		}
		dataEntry := badger.NewEntry([]byte(blobDataPrefix+meta.ID), data).WithTTL(ttl)
		return txn.SetEntry(dataEntry)
	})
}

func (r BlobRepository) GetMeta(id string) (*BlobMeta, error) {
	var meta BlobMeta
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobMetaPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBlobNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r BlobRepository) GetData(id string) ([]byte, error) {
	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobDataPrefix + id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBlobNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r BlobRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(blobMetaPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(blobDataPrefix + id))
	})
}

// ListMeta returns the metadata of every stored blob via a prefix scan.
func (r BlobRepository) ListMeta() ([]BlobMeta, error) {
	var metas []BlobMeta
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(blobMetaPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta BlobMeta
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return err
			}
			metas = append(metas, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metas, nil
}
