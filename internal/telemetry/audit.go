package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Audit actions.
const (
	ActionUserRegistered  = "user_registered"
	ActionUserLoggedIn    = "user_logged_in"
	ActionPasswordChanged = "password_changed"
	ActionUserDeleted     = "user_deleted"
	ActionRoomCreated     = "chat_room_created"
)

var knownActions = map[string]struct{}{
	ActionUserRegistered:  {},
	ActionUserLoggedIn:    {},
	ActionPasswordChanged: {},
	ActionUserDeleted:     {},
	ActionRoomCreated:     {},
}

// IsKnownAction reports whether action is one the service emits itself.
func IsKnownAction(action string) bool {
	_, ok := knownActions[action]
	return ok
}

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	logger      *zap.Logger
}

type AuditEnvelope struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	Action        string         `json:"action"`
	OccurredAt    string         `json:"occurred_at"`
	Service       string         `json:"service"`
	Environment   string         `json:"environment"`
	RequestID     string         `json:"request_id"`
	UserID        *int           `json:"user_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// EventEnvelope wraps non-audit events such as websocket lifecycle changes.
type EventEnvelope struct {
	EventType string         `json:"event_type"`
	EventName string         `json:"event_name"`
	RequestID string         `json:"request_id,omitempty"`
	Payload   map[string]any `json:"payload"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, logger *zap.Logger) *AuditEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		logger:      logger,
	}
}

// Emit publishes an audit record. A nil emitter is a no-op.
func (e *AuditEmitter) Emit(ctx context.Context, action string, userID int, payload map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	requestID := RequestIDFromContext(ctx)
	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		Action:        action,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Payload:       payload,
	}
	if userID != 0 {
		envelope.UserID = &userID
	}

	e.logger.Debug("audit emit", zap.String("action", action), zap.String("request_id", requestID), zap.Int("user_id", userID))
	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		e.logger.Warn("audit publish failed", zap.String("action", action), zap.Error(err))
	}
}

// PublishEvent sends a non-audit event on its own routing key.
func (e *AuditEmitter) PublishEvent(ctx context.Context, routingKey string, event EventEnvelope) error {
	if e == nil || e.publisher == nil {
		return nil
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFromContext(ctx)
	}
	return e.publisher.Publish(ctx, routingKey, event)
}
