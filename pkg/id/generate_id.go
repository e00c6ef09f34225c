package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes), backed by a v4 UUID.
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
