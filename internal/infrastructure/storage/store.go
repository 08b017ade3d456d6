package storage

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyKey is returned by object operations given an empty storage key
var ErrEmptyKey = errors.New("storage key is required")

// ObjectStore is what the letter publisher writes through. S3ObjectStorage
// serves it in deployments, MemoryObjectStorage in development and tests.
type ObjectStore interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
