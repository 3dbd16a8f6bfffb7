package shared

import "strings"

// NormalizeCode canonicalizes an entity identifier: surrounding whitespace is
// trimmed and the result is uppercased. Identifiers are compared in this
// canonical form everywhere, so "inv1 " and "INV1" name the same record.
// Returns a validation error when the raw value is empty or whitespace-only.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", NewDomainError("INVALID_INPUT", "Identifier cannot be empty")
	}
	return code, nil
}

// NormalizeOptionalCode canonicalizes an identifier that may be absent.
// An empty or whitespace-only value normalizes to "".
func NormalizeOptionalCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
