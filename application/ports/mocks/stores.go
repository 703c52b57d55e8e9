// Package mocks provides testify mocks of the store ports.
package mocks

import (
	"context"
	"time"

	"ahkneemay/application/ports"

	"github.com/stretchr/testify/mock"
)

// MockItemStore is a testify mock of ports.ItemStore
type MockItemStore struct {
	mock.Mock
}

func (m *MockItemStore) CreateTable(ctx context.Context, spec ports.TableSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

// PutItem records the folded ports.PutOptions as its fourth argument.
func (m *MockItemStore) PutItem(ctx context.Context, table string, item ports.Item, opts ...ports.PutOption) error {
	args := m.Called(ctx, table, item, ports.ApplyPutOptions(opts...))
	return args.Error(0)
}

func (m *MockItemStore) GetItem(ctx context.Context, table string, key ports.Key) (ports.Item, error) {
	args := m.Called(ctx, table, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Item), args.Error(1)
}

func (m *MockItemStore) DeleteItem(ctx context.Context, table string, key ports.Key) error {
	args := m.Called(ctx, table, key)
	return args.Error(0)
}

func (m *MockItemStore) Scan(ctx context.Context, table string, filter *ports.Filter) (*ports.ScanResult, error) {
	args := m.Called(ctx, table, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ScanResult), args.Error(1)
}

// MockBlobStore is a testify mock of ports.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) CreateBucket(ctx context.Context, bucket string) (string, error) {
	args := m.Called(ctx, bucket)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) PutObject(ctx context.Context, obj ports.Object) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *MockBlobStore) DeleteObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockBlobStore) PresignGetObject(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, bucket, key, ttl)
	return args.String(0), args.Error(1)
}

// MockCache is a testify mock of ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var (
	_ ports.ItemStore = (*MockItemStore)(nil)
	_ ports.BlobStore = (*MockBlobStore)(nil)
	_ ports.Cache     = (*MockCache)(nil)
)
