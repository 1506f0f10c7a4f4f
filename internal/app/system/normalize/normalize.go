// Package normalize centralizes the small string normalizations applied
// before user data is stored or compared. Every writer of these fields goes
// through here so the rules live in exactly one place.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthMethod lowercases and trims an auth method value.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SchoolName trims a school display name and maps the legacy "Not Set"
// sentinel to the empty string.
func SchoolName(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "not set") {
		return ""
	}
	return s
}
