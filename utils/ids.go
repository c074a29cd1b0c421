package utils

import (
	"github.com/google/uuid"
)

// ===================================================================
// ID GENERATION HELPERS
// ===================================================================

// GenerateEntityID generates an opaque 36-character identifier for
// tasks and users. Collisions across the 122-bit space are treated as
// negligible; the store enforces primary-key uniqueness as a backstop.
func GenerateEntityID() string {
	return uuid.NewString()
}
