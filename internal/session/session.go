// Package session holds the per-chat dialogue state: which phase a chat is
// in, its conversation history, and the model version it talks to.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ModelVersion selects which configured model a chat converses with.
// The set is closed; anything else read back from storage resolves to
// the default so an old or corrupted value never breaks a conversation.
type ModelVersion string

const (
	ModelFast    ModelVersion = "fast"
	ModelCapable ModelVersion = "capable"

	DefaultModelVersion = ModelFast
)

func ParseModelVersion(s string) ModelVersion {
	switch ModelVersion(s) {
	case ModelFast, ModelCapable:
		return ModelVersion(s)
	default:
		return DefaultModelVersion
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange unit. Turns are immutable once written; history is
// only ever replaced as a whole.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered conversational context replayed to the provider
// on every turn.
type History []Turn

// Append returns history grown by one user turn and one assistant turn.
func (h History) Append(userText, assistantText string) History {
	out := make(History, 0, len(h)+2)
	out = append(out, h...)
	out = append(out, Turn{Role: RoleUser, Content: userText})
	out = append(out, Turn{Role: RoleAssistant, Content: assistantText})
	return out
}

// DropOldest removes the single oldest turn. Empty history is a no-op.
func (h History) DropOldest() History {
	if len(h) == 0 {
		return h
	}
	return h[1:]
}

// ErrHistoryCorrupted marks a stored history that no longer parses. The
// chat stays unusable until explicitly reset; nothing is repaired
// automatically.
var ErrHistoryCorrupted = errors.New("stored history corrupted")

func EncodeHistory(h History) (string, error) {
	if h == nil {
		h = History{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeHistory(s string) (History, error) {
	var h History
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryCorrupted, err)
	}
	if h == nil {
		h = History{}
	}
	return h, nil
}

// Phase discriminates the session variants. The set is closed; dispatch
// over it should switch exhaustively.
type Phase int

const (
	// PhaseAwaitingKey is the initial phase. No record exists in the
	// store; the next text message is treated as a candidate API key.
	PhaseAwaitingKey Phase = iota

	// PhasePendingKey carries a submitted candidate through a single
	// verifying write. It is never persisted and never read back.
	PhasePendingKey

	// PhaseActive is an authorized chat carrying history and a model
	// version.
	PhaseActive
)

// Session is the per-chat state. Payload fields are only meaningful for
// the phase that owns them: Candidate for PhasePendingKey, History and
// Version for PhaseActive.
type Session struct {
	Phase     Phase
	Candidate string
	History   History
	Version   ModelVersion
}

// UserRecord is the persisted shape of an Active session. Absence of the
// row is itself the AwaitingKey phase.
type UserRecord struct {
	ChatID       int64     `gorm:"primaryKey"`
	History      string    `gorm:"type:text;not null"`
	ModelVersion string    `gorm:"type:varchar(16);not null"`
	KeyPrefix    []byte    `gorm:"type:varbinary(16)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserRecord) TableName() string { return "users" }
