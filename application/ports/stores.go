package ports

import (
	"context"
	"io"
	"time"
)

// Item is a record in the item store. Every attribute is a string; numeric
// fields are stored as digit strings.
type Item map[string]string

// Key holds the primary key attributes of an item.
type Key map[string]string

// KeySchema names the hash and optional range attribute of a table.
type KeySchema struct {
	HashKey  string
	RangeKey string // empty for hash-only tables
}

// TableSpec describes a table to create during provisioning.
type TableSpec struct {
	Name string
	KeySchema
}

// Filter is an equality filter applied by the store during a scan.
type Filter struct {
	Attribute string
	Equals    string
}

// ScanResult holds the items matched by a scan.
type ScanResult struct {
	Items []Item
	Count int
}

// PutOptions configures a PutItem call.
type PutOptions struct {
	// IfNotExists makes the put a conditional insert on this attribute.
	IfNotExists string
}

// PutOption mutates PutOptions.
type PutOption func(*PutOptions)

// IfNotExists turns the put into an insert that fails with a CONFLICT error
// when an item with the same key already holds attr.
func IfNotExists(attr string) PutOption {
	return func(o *PutOptions) {
		o.IfNotExists = attr
	}
}

// ApplyPutOptions folds opts into a PutOptions value
func ApplyPutOptions(opts ...PutOption) PutOptions {
	var o PutOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ItemStore defines the operations required of the structured record store.
// Implementations translate vendor errors: "already exists" and failed
// conditions become CONFLICT errors, everything else a STORE error.
type ItemStore interface {
	// CreateTable creates the table and returns the name the store reports.
	CreateTable(ctx context.Context, spec TableSpec) (string, error)

	// PutItem inserts or replaces an item.
	PutItem(ctx context.Context, table string, item Item, opts ...PutOption) error

	// GetItem returns the item stored under key, or nil when there is none.
	GetItem(ctx context.Context, table string, key Key) (Item, error)

	// DeleteItem removes the item stored under key.
	DeleteItem(ctx context.Context, table string, key Key) error

	// Scan returns every item of the table matching filter. A nil filter
	// matches everything.
	Scan(ctx context.Context, table string, filter *Filter) (*ScanResult, error)
}

// ACLPublicRead is the canned ACL for publicly readable objects.
const ACLPublicRead = "public-read"

// Object is a blob to upload.
type Object struct {
	Bucket        string
	Key           string
	Body          io.Reader
	ContentType   string
	ContentLength int64
	ACL           string
}

// BlobStore defines the operations required of the object store.
type BlobStore interface {
	// CreateBucket creates the bucket and returns its location when the
	// store reports one. An existing bucket is a CONFLICT error.
	CreateBucket(ctx context.Context, bucket string) (string, error)

	// PutObject uploads an object.
	PutObject(ctx context.Context, obj Object) error

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, key string) error

	// PresignGetObject returns a time-limited download URL.
	PresignGetObject(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// Cache stores short-lived string values.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
