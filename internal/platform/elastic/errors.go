package elastic

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed cluster call.
type Kind int

// Failure kinds.
const (
	KindConnection Kind = iota + 1
	KindAuth
	KindValidation
	KindConflict
	KindNotFound
	KindUnavailable
	KindServer
)

// Sentinels matched by errors.Is against any *APIError of the same kind.
var (
	ErrConnection  = errors.New("cluster unreachable")
	ErrAuth        = errors.New("credentials rejected")
	ErrValidation  = errors.New("request rejected as invalid")
	ErrConflict    = errors.New("resource already exists")
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("cluster temporarily unavailable")
	ErrServer      = errors.New("cluster internal error")
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindAuth:
		return ErrAuth
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindUnavailable:
		return ErrUnavailable
	case KindServer:
		return ErrServer
	}
	return nil
}

// Retryable reports whether a call failing with this kind may succeed later.
func (k Kind) Retryable() bool {
	return k == KindConnection || k == KindUnavailable
}

// APIError describes a failed cluster call.
type APIError struct {
	Kind   Kind
	Op     string // e.g. "create index articles"
	Status int    // 0 for transport failures
	Type   string // Elasticsearch error type, e.g. "mapper_parsing_exception"
	Reason string
	Body   string // raw response body, kept for diagnostics
	Err    error  // transport error, if any
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch {
	case e.Status == 0 && e.Err != nil:
		fmt.Fprintf(&b, "%s: %v", e.Kind.sentinel(), e.Err)
	case e.Type != "":
		fmt.Fprintf(&b, "[%d] %s: %s", e.Status, e.Type, e.Reason)
	default:
		fmt.Fprintf(&b, "[%d] %s", e.Status, e.Kind.sentinel())
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *APIError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of the first *APIError in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsRetryable reports whether err is a transient cluster failure.
func IsRetryable(err error) bool {
	return KindOf(err).Retryable()
}

// errorEnvelope is the standard Elasticsearch error body.
type errorEnvelope struct {
	Error struct {
		Type      string `json:"type"`
		Reason    string `json:"reason"`
		RootCause []struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"root_cause"`
	} `json:"error"`
	Status int `json:"status"`
}

// kindForStatus maps an HTTP status to a failure kind.
func kindForStatus(status int, errType string) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case errType == "resource_already_exists_exception", errType == "version_conflict_engine_exception",
		status == http.StatusConflict:
		return KindConflict
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return KindUnavailable
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// newStatusError builds an *APIError from a non-2xx answer.
func newStatusError(op string, status int, body []byte) *APIError {
	e := &APIError{
		Op:     op,
		Status: status,
		Body:   string(body),
	}

	var env errorEnvelope
	if len(body) > 0 && codec.Unmarshal(body, &env) == nil {
		e.Type = env.Error.Type
		e.Reason = env.Error.Reason
		if e.Reason == "" && len(env.Error.RootCause) > 0 {
			e.Type = env.Error.RootCause[0].Type
			e.Reason = env.Error.RootCause[0].Reason
		}
	}

	e.Kind = kindForStatus(status, e.Type)
	return e
}

// newConnectionError wraps a transport failure.
func newConnectionError(op string, err error) *APIError {
	return &APIError{Kind: KindConnection, Op: op, Err: err}
}
