package utils

import "github.com/google/uuid"

// NewID returns a random identifier for accounts and attempt rows.
func NewID() string {
	return uuid.New().String()
}
