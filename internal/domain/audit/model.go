// Package audit records security-relevant events: sign-ins, sign-outs,
// registrations, guard denials and branch changes.
package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category groups events for filtering.
type Category string

const (
	CategoryAccount  Category = "account"
	CategorySecurity Category = "security"
	CategoryBranch   Category = "branch"
)

// Action is what happened.
type Action string

const (
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
	ActionLogout      Action = "logout"
	ActionRegister    Action = "register"
	ActionVerify      Action = "verify_email"
	ActionDenied      Action = "denied"
	ActionCreate      Action = "create"
)

// Severity of an event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

var (
	ErrEmptyCategory = errors.New("audit category is required")
	ErrEmptyAction   = errors.New("audit action is required")
)

// Event is a single audit log entry.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Category    Category  `json:"category"`
	Action      Action    `json:"action"`
	Severity    Severity  `json:"severity"`
	ActorID     string    `json:"actor_id,omitempty"`
	ActorEmail  string    `json:"actor_email,omitempty"`
	ActorName   string    `json:"actor_name,omitempty"`
	ActorRole   string    `json:"actor_role,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	Resource    string    `json:"resource,omitempty"`
	Description string    `json:"description,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
}

// NewEvent creates an info-level event stamped with the current time.
// POST: ID is a fresh UUID
func NewEvent(category Category, action Action) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
	}
}

// Validate checks the fields every stored event needs.
func (e Event) Validate() error {
	if e.Category == "" {
		return ErrEmptyCategory
	}
	if e.Action == "" {
		return ErrEmptyAction
	}
	return nil
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithActor sets who performed the action.
func (e Event) WithActor(id, email, name, role, branch string) Event {
	e.ActorID = id
	e.ActorEmail = email
	e.ActorName = name
	e.ActorRole = role
	e.Branch = branch
	return e
}

// WithResource sets the path or entity the action touched.
func (e Event) WithResource(resource string) Event {
	e.Resource = resource
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from the HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}
