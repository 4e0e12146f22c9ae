package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/esprov/internal/platform/elastic"
	"github.com/imamik/esprov/internal/platform/elastic/query"
)

// MockClusterAPI is a testify mock of elastic.API for tests that need to
// assert exact call sequences or answers the FakeCluster cannot produce.
type MockClusterAPI struct {
	mock.Mock
}

var _ elastic.API = (*MockClusterAPI)(nil)

// Health returns the mocked cluster health.
func (m *MockClusterAPI) Health(ctx context.Context) (*elastic.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elastic.Health), args.Error(1)
}

// GetUser returns the mocked user.
func (m *MockClusterAPI) GetUser(ctx context.Context, name string) (*elastic.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*elastic.User), args.Error(1)
}

// PutUser records a user write.
func (m *MockClusterAPI) PutUser(ctx context.Context, name string, req elastic.PutUserRequest) (bool, error) {
	args := m.Called(ctx, name, req)
	return args.Bool(0), args.Error(1)
}

// Authenticate returns the mocked credential check.
func (m *MockClusterAPI) Authenticate(ctx context.Context, name, password string) (bool, error) {
	args := m.Called(ctx, name, password)
	return args.Bool(0), args.Error(1)
}

// IndexExists returns the mocked existence.
func (m *MockClusterAPI) IndexExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// CreateIndex records an index creation.
func (m *MockClusterAPI) CreateIndex(ctx context.Context, name string, def elastic.IndexDefinition) error {
	args := m.Called(ctx, name, def)
	return args.Error(0)
}

// DeleteIndex records an index deletion.
func (m *MockClusterAPI) DeleteIndex(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// GetMapping returns the mocked mapping.
func (m *MockClusterAPI) GetMapping(ctx context.Context, name string) (elastic.Properties, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(elastic.Properties), args.Error(1)
}

// Refresh records a refresh.
func (m *MockClusterAPI) Refresh(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// IndexDocument records a document write.
func (m *MockClusterAPI) IndexDocument(ctx context.Context, index, id string, fields map[string]any) (elastic.DocumentResult, error) {
	args := m.Called(ctx, index, id, fields)
	return args.Get(0).(elastic.DocumentResult), args.Error(1)
}

// GetDocument returns the mocked document source.
func (m *MockClusterAPI) GetDocument(ctx context.Context, index, id string) (map[string]any, error) {
	args := m.Called(ctx, index, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// Count returns the mocked document count.
func (m *MockClusterAPI) Count(ctx context.Context, index string) (int64, error) {
	args := m.Called(ctx, index)
	return args.Get(0).(int64), args.Error(1)
}

// Search returns the mocked search response.
func (m *MockClusterAPI) Search(ctx context.Context, index string, req *query.Request) (*query.Response, error) {
	args := m.Called(ctx, index, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Response), args.Error(1)
}
