package provisioning

import (
	"fmt"
	"sync"

	"github.com/imamik/esprov/internal/platform/elastic"
	estesting "github.com/imamik/esprov/internal/testing"
)

// MockObserver is a test implementation of Observer that records events.
type MockObserver struct {
	mu       sync.Mutex
	events   []Event
	messages []string
	fields   map[string]string
}

func NewMockObserver() *MockObserver {
	return &MockObserver{fields: make(map[string]string)}
}

func (m *MockObserver) Printf(format string, v ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func (m *MockObserver) Event(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: "progress",
		Fields: map[string]string{
			"current": fmt.Sprint(current),
			"total":   fmt.Sprint(total),
		},
	})
}

func (m *MockObserver) WithFields(fields map[string]string) Observer {
	child := NewMockObserver()
	for k, v := range m.fields {
		child.fields[k] = v
	}
	for k, v := range fields {
		child.fields[k] = v
	}
	return child
}

// eventsOf returns recorded events of one type.
func (m *MockObserver) eventsOf(typ EventType) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// articlesSpec is the articles fixture as an IndexSpec.
func articlesSpec() IndexSpec {
	spec := IndexSpec{
		Name:     estesting.ArticlesIndex,
		Shards:   3,
		Replicas: 1,
		Fields: []Field{
			{Name: "title", Type: "text"},
			{Name: "priority", Type: "integer"},
		},
	}
	for _, d := range estesting.ArticleDocs() {
		spec.Seed = append(spec.Seed, Document{ID: d.ID, Fields: d.Fields})
	}
	return spec
}

func aliceSpec() UserSpec {
	return UserSpec{Name: "alice", Password: "s3cret-pass", Roles: []string{"viewer", "editor"}, FullName: "Alice"}
}

func newTestProvisioner(api elastic.API, opts ...Option) (*Provisioner, *MockObserver) {
	obs := NewMockObserver()
	return New(api, obs, opts...), obs
}
