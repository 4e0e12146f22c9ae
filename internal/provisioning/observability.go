package provisioning

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal printf-style logger.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "users", "indices")
	Message   string            // Human-readable message
	Resource  string            // Resource name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceUpdated indicates an existing resource was overwritten.
	EventResourceUpdated EventType = "resource.updated"
	// EventResourceFailed indicates reconciling a resource failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourceDeleting indicates a resource is being deleted.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource was deleted successfully.
	EventResourceDeleted EventType = "resource.deleted"
	// EventDriftDetected indicates a live resource differs from its spec.
	EventDriftDetected EventType = "resource.drift"

	// EventQueryCompleted indicates a verification query ran.
	EventQueryCompleted EventType = "query.completed"
	// EventQuerySkipped indicates a verification query could not apply.
	EventQuerySkipped EventType = "query.skipped"
	// EventQueryFailed indicates a verification query failed.
	EventQueryFailed EventType = "query.failed"

	// EventRetry indicates a cluster call is retried.
	EventRetry EventType = "retry"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// NewLogger returns a logr.Logger writing one line per entry to w.
// Entries with a V-level above verbosity are dropped.
func NewLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

// ConsoleObserver implements Observer on top of a logr.Logger.
type ConsoleObserver struct {
	log           logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates a new observer logging through log.
func NewConsoleObserver(log logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		log:           log,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	kv := eventKeysAndValues(event)
	switch event.Type {
	case EventPhaseFailed, EventResourceFailed, EventQueryFailed:
		o.log.Error(errors.New(event.Message), string(event.Type), kv...)
	case EventResourceCreating, EventResourceDeleting, EventRetry, EventProgress:
		o.log.V(1).Info(event.Message, kv...)
	default:
		o.log.Info(event.Message, kv...)
	}
}

// Progress implements Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		o.log.V(1).Info("progress", "phase", phase, "current", current, "total", total)
		return
	}
	percentage := (current * 100) / total
	o.log.V(1).Info("progress", "phase", phase, "current", current, "total", total, "percent", percentage)
}

// WithFields implements Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		log:           o.log,
		contextFields: newFields,
	}
}

// eventKeysAndValues flattens an event into logr key/value pairs with
// fields in a stable order.
func eventKeysAndValues(event Event) []any {
	kv := []any{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, event.Fields[k])
	}
	return kv
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    kind.phase(),
		Resource: name,
		Message:  fmt.Sprintf("creating %s", kind),
		Fields:   map[string]string{"kind": string(kind)},
	})
}

// LogResourceDeleting logs a resource deletion start event.
func LogResourceDeleting(observer Observer, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceDeleting,
		Phase:    kind.phase(),
		Resource: name,
		Message:  fmt.Sprintf("deleting %s", kind),
		Fields:   map[string]string{"kind": string(kind)},
	})
}

// LogResourceDeleted logs a successful resource deletion event.
func LogResourceDeleted(observer Observer, kind ResourceKind, name string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Phase:    kind.phase(),
		Resource: name,
		Message:  fmt.Sprintf("%s deleted", kind),
		Fields:   map[string]string{"kind": string(kind)},
	})
}

// LogResult logs the final result of reconciling one resource.
func LogResult(observer Observer, r ReconcileResult) {
	event := Event{
		Phase:    r.Kind.phase(),
		Resource: r.Name,
		Fields: map[string]string{
			"kind":    string(r.Kind),
			"outcome": r.Label(),
		},
	}

	switch {
	case r.Outcome == OutcomeCreated:
		event.Type = EventResourceCreated
		event.Message = fmt.Sprintf("%s created", r.Kind)
	case r.Outcome == OutcomeAlreadyExists && r.Disposition == Skipped:
		event.Type = EventResourceExists
		event.Message = fmt.Sprintf("%s already exists", r.Kind)
	case r.Outcome == OutcomeAlreadyExists:
		event.Type = EventResourceUpdated
		event.Message = fmt.Sprintf("%s %s", r.Kind, r.Disposition)
	default:
		event.Type = EventResourceFailed
		event.Message = r.Reason
		if r.Err != nil {
			event.Message = fmt.Sprintf("%s: %v", r.Reason, r.Err)
		}
		event.Fields["state"] = r.State.String()
	}

	observer.Event(event)
}

// LogDrift logs a difference between a live resource and its spec.
func LogDrift(observer Observer, kind ResourceKind, name, diff string) {
	observer.Event(Event{
		Type:     EventDriftDetected,
		Phase:    kind.phase(),
		Resource: name,
		Message:  fmt.Sprintf("live %s differs from spec (-live +spec):\n%s", kind, diff),
		Fields:   map[string]string{"kind": string(kind)},
	})
}

// LogVerification logs the outcome of one verification query.
func LogVerification(observer Observer, index string, v VerificationOutcome) {
	event := Event{
		Phase:    phaseVerification,
		Resource: index,
		Fields:   map[string]string{"query": v.Name},
	}

	switch {
	case v.Skipped:
		event.Type = EventQuerySkipped
		event.Message = "skipped: " + v.Reason
	case v.Err != nil:
		event.Type = EventQueryFailed
		event.Message = v.Err.Error()
	default:
		event.Type = EventQueryCompleted
		event.Message = fmt.Sprintf("%d hits in %v", v.HitCount, v.Elapsed.Round(time.Millisecond))
		event.Fields["hits"] = fmt.Sprint(v.HitCount)
	}

	observer.Event(event)
}

// LogRetry logs a retried cluster call.
func LogRetry(observer Observer, op string, attempt int, delay time.Duration, err error) {
	observer.Event(Event{
		Type:    EventRetry,
		Message: fmt.Sprintf("attempt %d failed, retrying in %v: %v", attempt, delay, err),
		Fields:  map[string]string{"op": op},
	})
}

// Phase names.
const (
	phaseHealth       = "health"
	phaseUsers        = "users"
	phaseIndices      = "indices"
	phaseDocuments    = "documents"
	phaseVerification = "verification"
)

func (k ResourceKind) phase() string {
	switch k {
	case KindUser:
		return phaseUsers
	case KindIndex:
		return phaseIndices
	case KindDocument:
		return phaseDocuments
	default:
		return string(k)
	}
}
