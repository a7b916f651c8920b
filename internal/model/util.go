package model

import (
	"crypto/rand"
	"fmt"
	"time"
)

// DateLayout is the wire format for all dates in request and response
// bodies (DD/MM/YYYY).
const DateLayout = "02/01/2006"

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const keyLength = 20

// generateProjectKey creates the opaque 20-character lookup key
func generateProjectKey() string {
	b := make([]byte, keyLength)
	_, err := rand.Read(b)
	if err != nil {
		// In a real application, we would handle this error better
		panic(err)
	}
	for i := range b {
		b[i] = keyAlphabet[int(b[i])%len(keyAlphabet)]
	}
	return string(b)
}

// ParseDate parses a DD/MM/YYYY string strictly
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY", value)
	}
	return t, nil
}

// ParseDatePtr parses an optional DD/MM/YYYY string. Nil or empty input
// yields nil without error.
func ParseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDatePtr renders an optional date back to the wire format
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
