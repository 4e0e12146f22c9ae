package testing

import (
	"context"
)

// SeedDoc is a document fixture.
type SeedDoc struct {
	ID     string
	Fields map[string]any
}

// ArticlesIndex is the name of the articles fixture index.
const ArticlesIndex = "articles"

// ArticlesMapping is the articles fixture mapping: a text title and an
// integer priority.
func ArticlesMapping() *MappingBuilder {
	return NewMappingBuilder().Text("title", false).Integer("priority")
}

// ArticleDocs returns five articles with priorities 1, 2, 3, 1 and 2.
func ArticleDocs() []SeedDoc {
	return []SeedDoc{
		{ID: "1", Fields: map[string]any{"title": "Getting started with Elasticsearch", "priority": 1}},
		{ID: "2", Fields: map[string]any{"title": "Index mappings explained", "priority": 2}},
		{ID: "3", Fields: map[string]any{"title": "Search relevance tuning", "priority": 3}},
		{ID: "4", Fields: map[string]any{"title": "Backing up a cluster", "priority": 1}},
		{ID: "5", Fields: map[string]any{"title": "Elasticsearch aggregations", "priority": 2}},
	}
}

// ClusterFixture prepares a FakeCluster for common scenarios.
type ClusterFixture struct {
	fake *FakeCluster
}

// NewClusterFixture creates a fixture around an empty FakeCluster.
func NewClusterFixture() *ClusterFixture {
	return &ClusterFixture{fake: NewFakeCluster()}
}

// Fake returns the underlying FakeCluster.
func (f *ClusterFixture) Fake() *FakeCluster {
	return f.fake
}

// WithArticles creates and seeds the articles index and refreshes it.
// Call records are cleared so tests only see their own calls.
func (f *ClusterFixture) WithArticles() *ClusterFixture {
	ctx := context.Background()
	if err := f.fake.CreateIndex(ctx, ArticlesIndex, ArticlesMapping().Definition(3, 1)); err != nil {
		panic(err)
	}
	for _, d := range ArticleDocs() {
		if _, err := f.fake.IndexDocument(ctx, ArticlesIndex, d.ID, d.Fields); err != nil {
			panic(err)
		}
	}
	if err := f.fake.Refresh(ctx, ArticlesIndex); err != nil {
		panic(err)
	}
	f.fake.ResetCalls()
	return f
}

// WithUnauthorized makes every call fail with a 401.
func (f *ClusterFixture) WithUnauthorized() *ClusterFixture {
	for _, op := range []string{
		"Health", "GetUser", "PutUser", "IndexExists", "CreateIndex", "DeleteIndex",
		"GetMapping", "Refresh", "IndexDocument", "GetDocument", "Count", "Search",
	} {
		f.fake.FailOn(op, AuthError(op), 0)
	}
	return f
}
