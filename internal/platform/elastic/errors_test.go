package elastic

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		sentinel error
		wantType string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"type":"security_exception","reason":"unable to authenticate user [elastic]"},"status":401}`, KindAuth, ErrAuth, "security_exception"},
		{"forbidden", http.StatusForbidden, `{"error":{"type":"security_exception","reason":"action is unauthorized"},"status":403}`, KindAuth, ErrAuth, "security_exception"},
		{"bad request", http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception","reason":"failed to parse field [priority]"},"status":400}`, KindValidation, ErrValidation, "mapper_parsing_exception"},
		{"index exists", http.StatusBadRequest, `{"error":{"type":"resource_already_exists_exception","reason":"index [articles/abc] already exists"},"status":400}`, KindConflict, ErrConflict, "resource_already_exists_exception"},
		{"not found", http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`, KindNotFound, ErrNotFound, "index_not_found_exception"},
		{"too many requests", http.StatusTooManyRequests, ``, KindUnavailable, ErrUnavailable, ""},
		{"unavailable", http.StatusServiceUnavailable, `not json`, KindUnavailable, ErrUnavailable, ""},
		{"internal", http.StatusInternalServerError, `{"error":{"root_cause":[{"type":"null_pointer_exception","reason":"boom"}]},"status":500}`, KindServer, ErrServer, "null_pointer_exception"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := newStatusError("op", tt.status, []byte(tt.body))

			assert.Equal(t, tt.wantKind, err.Kind)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.body, err.Body)
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	t.Parallel()

	err := newStatusError("create index articles", 400, []byte(`{"error":{"type":"illegal_argument_exception","reason":"unknown setting"}}`))
	assert.Equal(t, "create index articles: [400] illegal_argument_exception: unknown setting", err.Error())

	conn := newConnectionError("cluster health", errors.New("dial tcp 127.0.0.1:9200: connect: connection refused"))
	assert.Equal(t, "cluster health: cluster unreachable: dial tcp 127.0.0.1:9200: connect: connection refused", conn.Error())

	bare := newStatusError("delete index x", 503, nil)
	assert.Equal(t, "delete index x: [503] cluster temporarily unavailable", bare.Error())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("ensure user: %w", newStatusError("put user", 401, nil))
	assert.Equal(t, KindAuth, KindOf(wrapped))
	assert.False(t, IsRetryable(wrapped))

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.True(t, IsRetryable(newConnectionError("op", errors.New("reset"))))
	assert.True(t, IsRetryable(newStatusError("op", 502, nil)))
}

func TestAPIError_DoesNotMatchOtherSentinels(t *testing.T) {
	t.Parallel()
	err := newStatusError("op", 401, nil)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConnection)
}
