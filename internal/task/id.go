package task

import (
	"strings"

	"github.com/google/uuid"
)

const shortIDLength = 8

// NewID returns a random 128-bit identifier in canonical UUID form.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the display prefix of an ID.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// MatchesID reports whether prefix is a non-empty leading part of id.
func MatchesID(id, prefix string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return false
	}
	return strings.HasPrefix(id, prefix)
}
