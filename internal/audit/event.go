package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/sportx-platform/access-gateway/internal/policy"
)

// Outcome classifies a gate decision worth recording.
type Outcome string

const (
	OutcomeNoSession      Outcome = "no_session"
	OutcomeInvalidSession Outcome = "invalid_session"
	OutcomeAccessDenied   Outcome = "access_denied"
	OutcomeRevoked        Outcome = "revoked"
)

// Event captures one denied request for the audit trail.
type Event struct {
	ID         uuid.UUID
	OccurredAt time.Time
	Family     string
	Outcome    Outcome
	Path       string
	Method     string
	Subject    string
	Role       policy.Role
	ClientIP   string
}

// NewEvent stamps identity and time onto a deny record.
func NewEvent(family string, outcome Outcome, path, method, subject string, role policy.Role, clientIP string) Event {
	return Event{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
		Family:     family,
		Outcome:    outcome,
		Path:       path,
		Method:     method,
		Subject:    subject,
		Role:       role,
		ClientIP:   clientIP,
	}
}
