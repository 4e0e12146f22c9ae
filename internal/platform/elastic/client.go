package elastic

import (
	"context"

	"github.com/imamik/esprov/internal/platform/elastic/query"
)

// UserManager manages native realm users.
type UserManager interface {
	// GetUser returns the user, or nil if it does not exist.
	GetUser(ctx context.Context, name string) (*User, error)
	// PutUser creates or updates a user. created reports whether the
	// cluster created a new record.
	PutUser(ctx context.Context, name string, req PutUserRequest) (created bool, err error)
	// Authenticate reports whether the cluster accepts name and password.
	// A rejection is (false, nil); err is set only when the check itself
	// could not be made.
	Authenticate(ctx context.Context, name, password string) (bool, error)
}

// IndexManager manages index lifecycle.
type IndexManager interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, def IndexDefinition) error
	DeleteIndex(ctx context.Context, name string) error
	// GetMapping returns the live field mappings of an index.
	GetMapping(ctx context.Context, name string) (Properties, error)
	Refresh(ctx context.Context, name string) error
}

// DocumentManager writes and reads documents.
type DocumentManager interface {
	// IndexDocument stores a document under id and returns the cluster's
	// result ("created" or "updated").
	IndexDocument(ctx context.Context, index, id string, fields map[string]any) (DocumentResult, error)
	// GetDocument returns the document source, or nil if it does not exist.
	GetDocument(ctx context.Context, index, id string) (map[string]any, error)
	Count(ctx context.Context, index string) (int64, error)
}

// Searcher runs read-only queries.
type Searcher interface {
	Search(ctx context.Context, index string, req *query.Request) (*query.Response, error)
}

// API is everything the provisioner needs from a cluster.
type API interface {
	UserManager
	IndexManager
	DocumentManager
	Searcher

	Health(ctx context.Context) (*Health, error)
}
