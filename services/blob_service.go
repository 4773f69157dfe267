package services

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "chat-relay/errors"
	"chat-relay/repositories"
)

const (
	// MaxBlobSize is the hard per-upload ceiling.
	MaxBlobSize = 25 << 20
	// ReservedHeadroom is kept free at all times as an operational
	// safety margin.
	ReservedHeadroom = 100 << 20
	// BlobTTL bounds every blob's lifetime from its creation instant.
	BlobTTL = 24 * time.Hour
)

// BlobService stores uploaded binary payloads with capacity-driven
// eviction: when an accepted upload would push total usage past
// quota - ReservedHeadroom, stored blobs are evicted strictly
// oldest-upload-first until it fits.
type BlobService struct {
	mu    sync.Mutex
	blobs repositories.IBlobRepository
	log   *slog.Logger
	quota int64
}

func NewBlobService(blobs repositories.IBlobRepository, log *slog.Logger, quota int64) *BlobService {
	return &BlobService{blobs: blobs, log: log, quota: quota}
}

// Put accepts a payload and returns its stored metadata. The size ceiling
// is enforced before any eviction logic runs.
func (s *BlobService) Put(data []byte, declaredType, fileName string) (*repositories.BlobMeta, error) {
	size := int64(len(data))
	if size > MaxBlobSize {
		return nil, fmt.Errorf("%w: %d bytes", apperrors.ErrTooLarge, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reclaim(size); err != nil {
		return nil, err
	}

	contentType := declaredType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	now := time.Now().UTC()
	meta := repositories.BlobMeta{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  now.UnixMilli(),
		ExpiresAt:   now.Add(BlobTTL).UnixMilli(),
	}
	if err := s.blobs.Put(meta, data, BlobTTL); err != nil {
		return nil, err
	}
	s.log.Debug("blob stored",
		"blob_id", meta.ID,
		"size", meta.Size,
		"content_type", meta.ContentType,
	)
	return &meta, nil
}

// Get returns the payload and metadata of a blob. An expired blob is
// absent regardless of whether the backing store has purged it yet.
func (s *BlobService) Get(id string) ([]byte, *repositories.BlobMeta, error) {
	meta, err := s.blobs.GetMeta(id)
	if err != nil {
		return nil, nil, err
	}
	if meta.ExpiresAt <= time.Now().UTC().UnixMilli() {
		_ = s.blobs.Delete(id)
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrBlobNotFound, id)
	}
	data, err := s.blobs.GetData(id)
	if err != nil {
		return nil, nil, err
	}
	return data, meta, nil
}

// reclaim frees enough space for an incoming payload of the given size,
// evicting oldest-uploaded blobs first. Expired blobs the backing store
// has not purged yet are dropped from the accounting on the way.
func (s *BlobService) reclaim(incoming int64) error {
	usable := s.quota - ReservedHeadroom

	metas, err := s.blobs.ListMeta()
	if err != nil {
		return err
	}

	now := time.Now().UTC().UnixMilli()
	var total int64
	live := metas[:0]
	for _, meta := range metas {
		if meta.ExpiresAt <= now {
			_ = s.blobs.Delete(meta.ID)
			continue
		}
		total += meta.Size
		live = append(live, meta)
	}

	if total+incoming <= usable {
		return nil
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].UploadedAt < live[j].UploadedAt
	})
	for _, meta := range live {
		if total+incoming <= usable {
			break
		}
		if err := s.blobs.Delete(meta.ID); err != nil {
			return err
		}
		total -= meta.Size
		s.log.Info("blob evicted for capacity",
			"blob_id", meta.ID,
			"size", meta.Size,
			"uploaded_at", meta.UploadedAt,
		)
	}

	if total+incoming > usable {
		return fmt.Errorf("%w: %d bytes requested", apperrors.ErrInsufficientSpace, incoming)
	}
	return nil
}
