// Package uuid issues the time-ordered identifiers used for every ledger record.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 string. Ids issued later sort after ids issued earlier,
// which keeps persisted snapshots stable to diff.
//
// Falls back to a random v4 when the v7 generator cannot read entropy.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and canonicalizes a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
