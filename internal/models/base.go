package models

import (
	"kasa/internal/uuid"
)

// Base carries the stable identity shared by every persisted record.
type Base struct {
	ID string `json:"id"`
}

// EnsureID assigns a time-ordered UUIDv7 when the record has no id yet.
func (b *Base) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.New()
	}
}
