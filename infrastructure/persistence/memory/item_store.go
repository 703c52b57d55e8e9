// Package memory provides in-memory store implementations used in mock mode
// and tests. They keep state for the life of the value and are safe for
// concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"
)

type table struct {
	schema ports.KeySchema
	items  map[string]ports.Item
}

// ItemStore is an in-memory ports.ItemStore
type ItemStore struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewItemStore creates an empty item store
func NewItemStore() *ItemStore {
	return &ItemStore{
		tables: make(map[string]*table),
	}
}

// CreateTable creates a table, failing with a RESOURCE_IN_USE conflict when
// it already exists
func (s *ItemStore) CreateTable(ctx context.Context, spec ports.TableSpec) (string, error) {
	if spec.Name == "" || spec.HashKey == "" {
		return "", pkgerrors.NewStoreError("CreateTable", fmt.Errorf("table name and hash key are required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[spec.Name]; exists {
		return "", pkgerrors.NewConflictError(pkgerrors.CodeResourceInUse,
			fmt.Sprintf("table %s already exists", spec.Name))
	}

	s.tables[spec.Name] = &table{
		schema: spec.KeySchema,
		items:  make(map[string]ports.Item),
	}
	return spec.Name, nil
}

// PutItem inserts or replaces an item
func (s *ItemStore) PutItem(ctx context.Context, tableName string, item ports.Item, opts ...ports.PutOption) error {
	options := ports.ApplyPutOptions(opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table("PutItem", tableName)
	if err != nil {
		return err
	}

	id, err := t.id("PutItem", ports.Key(item))
	if err != nil {
		return err
	}

	if options.IfNotExists != "" {
		if existing, ok := t.items[id]; ok {
			if _, has := existing[options.IfNotExists]; has {
				return pkgerrors.NewConflictError(pkgerrors.CodeConditionFailed, "the conditional request failed")
			}
		}
	}

	t.items[id] = copyItem(item)
	return nil
}

// GetItem returns a copy of the item under key, or nil
func (s *ItemStore) GetItem(ctx context.Context, tableName string, key ports.Key) (ports.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table("GetItem", tableName)
	if err != nil {
		return nil, err
	}

	id, err := t.id("GetItem", key)
	if err != nil {
		return nil, err
	}

	item, ok := t.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

// DeleteItem removes the item under key. Deleting a missing item succeeds.
func (s *ItemStore) DeleteItem(ctx context.Context, tableName string, key ports.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table("DeleteItem", tableName)
	if err != nil {
		return err
	}

	id, err := t.id("DeleteItem", key)
	if err != nil {
		return err
	}

	delete(t.items, id)
	return nil
}

// Scan returns matching items ordered by key
func (s *ItemStore) Scan(ctx context.Context, tableName string, filter *ports.Filter) (*ports.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table("Scan", tableName)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(t.items))
	for id := range t.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &ports.ScanResult{Items: []ports.Item{}}
	for _, id := range ids {
		item := t.items[id]
		if filter != nil && item[filter.Attribute] != filter.Equals {
			continue
		}
		result.Items = append(result.Items, copyItem(item))
	}
	result.Count = len(result.Items)
	return result, nil
}

func (s *ItemStore) table(op, name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, pkgerrors.NewStoreError(op, fmt.Errorf("requested resource not found: table %s", name))
	}
	return t, nil
}

func (t *table) id(op string, key ports.Key) (string, error) {
	hash, ok := key[t.schema.HashKey]
	if !ok || hash == "" {
		return "", pkgerrors.NewStoreError(op, fmt.Errorf("missing key attribute %s", t.schema.HashKey))
	}
	if t.schema.RangeKey == "" {
		return hash, nil
	}
	rng, ok := key[t.schema.RangeKey]
	if !ok || rng == "" {
		return "", pkgerrors.NewStoreError(op, fmt.Errorf("missing key attribute %s", t.schema.RangeKey))
	}
	return strings.Join([]string{hash, rng}, "\x00"), nil
}

func copyItem(item ports.Item) ports.Item {
	out := make(ports.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

var _ ports.ItemStore = (*ItemStore)(nil)
