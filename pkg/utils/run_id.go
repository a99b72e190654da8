package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a short, human-readable planning run ID.
// Format: {operation}-{8charHexUUID}, e.g. "plan-a3f8e2b1"
func GenerateRunID(operation string) string {
	operation = strings.ToLower(strings.TrimSpace(operation))
	if operation == "" {
		operation = "run"
	}
	return operation + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
