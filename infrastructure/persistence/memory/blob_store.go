package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"
)

// StoredObject is a blob held by BlobStore
type StoredObject struct {
	Data        []byte
	ContentType string
	ACL         string
}

// BlobStore is an in-memory ports.BlobStore
type BlobStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]StoredObject
}

// NewBlobStore creates an empty blob store
func NewBlobStore() *BlobStore {
	return &BlobStore{
		buckets: make(map[string]map[string]StoredObject),
	}
}

// CreateBucket creates a bucket. It never reports a location, so callers
// fall back to the synthesized website URL.
func (s *BlobStore) CreateBucket(ctx context.Context, bucket string) (string, error) {
	if bucket == "" {
		return "", pkgerrors.NewStoreError("CreateBucket", fmt.Errorf("bucket name is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.buckets[bucket]; exists {
		return "", pkgerrors.NewConflictError(pkgerrors.CodeBucketExists,
			fmt.Sprintf("bucket %s already exists", bucket))
	}
	s.buckets[bucket] = make(map[string]StoredObject)
	return "", nil
}

// PutObject stores the object body in memory
func (s *BlobStore) PutObject(ctx context.Context, obj ports.Object) error {
	var data []byte
	if obj.Body != nil {
		var err error
		data, err = io.ReadAll(obj.Body)
		if err != nil {
			return pkgerrors.NewStoreError("PutObject", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[obj.Bucket]
	if !ok {
		return pkgerrors.NewStoreError("PutObject", fmt.Errorf("no such bucket: %s", obj.Bucket))
	}
	objects[obj.Key] = StoredObject{Data: data, ContentType: obj.ContentType, ACL: obj.ACL}
	return nil
}

// DeleteObject removes an object. Deleting a missing key succeeds.
func (s *BlobStore) DeleteObject(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return pkgerrors.NewStoreError("DeleteObject", fmt.Errorf("no such bucket: %s", bucket))
	}
	delete(objects, key)
	return nil
}

// PresignGetObject returns a pseudo URL carrying the expiry
func (s *BlobStore) PresignGetObject(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.buckets[bucket]; !ok {
		return "", pkgerrors.NewStoreError("PresignGetObject", fmt.Errorf("no such bucket: %s", bucket))
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s/%s?expires=%d", bucket, url.PathEscape(key), expires), nil
}

// Object returns a stored object
func (s *BlobStore) Object(bucket, key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	return obj, ok
}

// Len returns the number of objects in bucket
func (s *BlobStore) Len(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.buckets[bucket])
}

var _ ports.BlobStore = (*BlobStore)(nil)
