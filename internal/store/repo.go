package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/trigtutor/internal/analytics"
	"github.com/abhisek/trigtutor/internal/roadmap"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates calls per purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// EducationLevel is the learner's self-reported stage.
type EducationLevel string

const (
	LevelPrimaria     EducationLevel = "Primaria"
	LevelSecundaria   EducationLevel = "Secundaria"
	LevelBachillerato EducationLevel = "Bachillerato"
	LevelUniversidad  EducationLevel = "Universidad"
	LevelOtro         EducationLevel = "Otro"
)

// Profile is the public part of a user record. ID is the record key and is
// never written inside the stored document.
type Profile struct {
	ID             string         `json:"id,omitempty"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	Avatar         string         `json:"avatar"`
	Age            int            `json:"age,omitempty"`
	Institution    string         `json:"institution,omitempty"`
	EducationLevel EducationLevel `json:"educationLevel,omitempty"`
}

// UserData is the full document stored per user.
type UserData struct {
	Profile   Profile          `json:"profile"`
	Analytics analytics.Data   `json:"analytics"`
	Progress  roadmap.Progress `json:"progress,omitempty"`
}

// UserRepo reads and writes user documents keyed by user id.
type UserRepo interface {
	// Get returns the user's document with Profile.ID set, or ErrNotFound.
	Get(ctx context.Context, id string) (*UserData, error)

	// Save merges data into the stored document for data.Profile.ID.
	Save(ctx context.Context, data *UserData) error

	// EnsureProfile returns the existing document or creates the default
	// one from the sign-in identity.
	EnsureProfile(ctx context.Context, id, email, displayName string) (*UserData, error)
}

// UserRequest is one entry of the request log.
type UserRequest struct {
	ID          string
	UserID      string
	RequestText string
	Timestamp   time.Time
}

// RequestLog is the append-only log of topics users asked for.
type RequestLog interface {
	Append(ctx context.Context, userID, text string) error
	Recent(ctx context.Context, userID string, limit int) ([]UserRequest, error)
}
