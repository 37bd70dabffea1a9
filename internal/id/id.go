// Package id generates the identifiers used across Secret Shows.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers.
const (
	PrefixUser    = "user"
	PrefixBooking = "booking"
)

// loginNamespace scopes the deterministic user IDs derived from emails.
var loginNamespace = uuid.MustParse("8d3c6f0e-52a4-4a57-9a3b-5ec2e7d0b9f1")

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "booking-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// ForEmail returns the stable user ID for an email address.
// The same address (ignoring case and surrounding space) always maps to the same ID.
func ForEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return PrefixUser + "-" + uuid.NewSHA1(loginNamespace, []byte(normalized)).String()
}

// NewProfile returns a fresh browser profile identifier.
func NewProfile() string {
	return uuid.NewString()
}

// IsProfile reports whether s is a well-formed profile identifier.
func IsProfile(s string) bool {
	return uuid.Validate(s) == nil
}
