// Package moderation implements the report workflow: intake of user reports
// against posts and comments, the moderator queue, and the resolution engine
// that applies enforcement decisions.
package moderation

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/openbarrio/automod/internal/store"
)

var (
	// ErrSelfReport is returned when a user reports their own content.
	ErrSelfReport = errors.New("cannot report your own content")

	// ErrForbidden is returned when the acting user may not moderate the
	// report's community.
	ErrForbidden = errors.New("not a moderator of this community")

	// ErrInvalidAction is returned for an unrecognized review action.
	ErrInvalidAction = errors.New("invalid review action")
)

const maxDescriptionLen = 1000

// Service coordinates report intake, the moderation queue, and resolution.
// It is stateless; every call is an independent unit of work against the
// store and is safe for concurrent use.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a moderation service over the given store.
func NewService(s store.Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger}
}

// sanitizeDescription strips angle brackets, caps the length at
// maxDescriptionLen characters, and trims whitespace. Rendering still owns
// output encoding. The cap counts runes so a multi-byte character at the
// boundary is dropped whole, never split.
func sanitizeDescription(text string) string {
	text = strings.NewReplacer("<", "", ">", "").Replace(text)
	if r := []rune(text); len(r) > maxDescriptionLen {
		text = string(r[:maxDescriptionLen])
	}
	return strings.TrimSpace(text)
}
