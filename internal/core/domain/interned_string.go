package domain

import "unique"

// InternedString wraps a unique.Handle[string] so that package and group names
// repeated across thousands of records share one allocation.
// The zero value is the empty string.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString interns s.
func NewInternedString(s string) InternedString {
	if s == "" {
		return InternedString{}
	}
	return InternedString{h: unique.Make(s)}
}

// String returns the underlying string value.
func (is InternedString) String() string {
	if is.IsZero() {
		return ""
	}
	return is.h.Value()
}

// IsZero reports whether is holds the empty string.
func (is InternedString) IsZero() bool {
	return is.h == unique.Handle[string]{}
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	*is = NewInternedString(string(text))
	return nil
}
