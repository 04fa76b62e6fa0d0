// Package session holds the per-user context remembered between chat turns:
// the latest uploaded file's extraction result and a bounded chat history.
package session

import (
	"datasoph/internal/models"
)

// DefaultUserID is applied when a request carries no user identifier.
const DefaultUserID = "default_user"

// DefaultHistoryCap bounds the chat history per user; oldest turns drop first.
const DefaultHistoryCap = 10

// FileContext is the derived context of a user's most recent upload.
type FileContext struct {
	File   models.UploadedFile     `json:"file"`
	Result models.ExtractionResult `json:"result"`
}

// Store is the session-context capability. Register replaces the user's file
// context outright: only the latest upload stays active. Implementations must
// serialize operations racing on the same user id.
type Store interface {
	// Register replaces the user's current file context with this one entry.
	Register(userID string, file models.UploadedFile, result models.ExtractionResult)

	// Latest returns the user's current file context, or nil.
	Latest(userID string) *FileContext

	// AppendTurn appends to the bounded chat history, evicting the oldest
	// entries beyond the cap.
	AppendTurn(userID string, role models.Role, content string)

	// RecentTurns returns up to n most recent turns, oldest first.
	RecentTurns(userID string, n int) []models.ChatTurn

	// Reset clears file context and chat history for the user, returning the
	// counts of files and turns cleared.
	Reset(userID string) (filesCleared, turnsCleared int)
}

// NormalizeUserID maps an absent id to the default.
func NormalizeUserID(id string) string {
	if id == "" {
		return DefaultUserID
	}
	return id
}
