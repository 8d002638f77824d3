package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random UUID, optionally namespaced as "<prefix>-<uuid>".
func GenerateID(prefix string) string {
	id := uuid.New().String()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
