// Package sanitize converts raw branch labels into storage-safe identifiers.
//
// Branch segments in asset storage paths must match: ^[a-z0-9_-]+$
// This package ensures every label written into a path conforms to that
// alphabet. Distinct raw labels may sanitize to the same result; callers
// that need uniqueness must enforce it themselves.
package sanitize

import (
	"errors"
	"strings"
)

// ErrInvalidBranchName is returned when the input branch label is empty or
// contains only whitespace.
var ErrInvalidBranchName = errors.New("branch name cannot be empty")

// BranchName sanitizes a raw branch label for use in storage paths.
//
// Rules applied, in order:
//   - Replaces "@" with "_at_"
//   - Replaces "." and "/" with underscores
//   - Converts to lowercase
//   - Replaces any remaining character outside [a-z0-9_-] with an underscore
//
// Earlier steps only ever produce characters the later steps accept, so
// sanitizing already-sanitized output returns it unchanged.
//
// Examples:
//
//	"test.data_model_reg" -> "test_data_model_reg"
//	"user@company.com"    -> "user_at_company_com"
//	"feature/my-branch"   -> "feature_my-branch"
func BranchName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidBranchName
	}

	s := strings.ReplaceAll(raw, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ToLower(s)

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if isSafe(r) {
			result.WriteRune(r)
		} else {
			result.WriteRune('_')
		}
	}

	return result.String(), nil
}

// Valid reports whether s is already a storage-safe branch segment.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isSafe(r) {
			return false
		}
	}
	return true
}

func isSafe(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}
