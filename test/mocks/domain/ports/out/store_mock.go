package aggregation_out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
)

// MockStore is a mock implementation of out.Store.
type MockStore struct {
	mock.Mock
}

var _ out.Store = (*MockStore)(nil)

func (_m *MockStore) FindOne(ctx context.Context, collection string, filter map[string]any, result any) (bool, error) {
	ret := _m.Called(ctx, collection, filter, result)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockStore) FindMany(ctx context.Context, collection string, filter map[string]any, result any) error {
	ret := _m.Called(ctx, collection, filter, result)
	return ret.Error(0)
}

func (_m *MockStore) CountMatching(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	ret := _m.Called(ctx, collection, filter)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockStore) FindMaterialised(ctx context.Context, resourceType, externalKey string) (*materialised.Document, bool, error) {
	ret := _m.Called(ctx, resourceType, externalKey)

	var r0 *materialised.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*materialised.Document)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *MockStore) FindManyMaterialisedByIDs(ctx context.Context, resourceType string, ids []uuid.UUID) ([]*materialised.Document, error) {
	ret := _m.Called(ctx, resourceType, ids)

	var r0 []*materialised.Document
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*materialised.Document)
	}
	return r0, ret.Error(1)
}

func (_m *MockStore) UpsertMaterialised(ctx context.Context, doc *materialised.Document) error {
	ret := _m.Called(ctx, doc)
	return ret.Error(0)
}

func (_m *MockStore) BulkWriteMaterialised(ctx context.Context, ops []materialised.BulkOp, now time.Time) (int, int, error) {
	ret := _m.Called(ctx, ops, now)
	return ret.Int(0), ret.Int(1), ret.Error(2)
}

func (_m *MockStore) CreateIndex(ctx context.Context, collection, name string, keys []out.IndexKey, unique bool) error {
	ret := _m.Called(ctx, collection, name, keys, unique)
	return ret.Error(0)
}

func (_m *MockStore) IndexExists(ctx context.Context, collection, name string) (bool, error) {
	ret := _m.Called(ctx, collection, name)
	return ret.Bool(0), ret.Error(1)
}

func (_m *MockStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	ret := _m.Called(ctx, collection)
	return ret.Bool(0), ret.Error(1)
}

// NewMockStore creates a new instance of MockStore.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
