package authflow

import "strings"

// NormalizeScope ensures the configured scope can mint refresh tokens and
// read recovery data: "offline" is prepended when absent (required for
// refresh-token issuance) and "read:recovery" appended when absent
// (required for data access). Order is otherwise preserved and duplicates
// are dropped, so normalization is idempotent.
func NormalizeScope(raw string) string {
	seen := make(map[string]bool)
	var scopes []string
	for _, part := range strings.Fields(raw) {
		if !seen[part] {
			seen[part] = true
			scopes = append(scopes, part)
		}
	}
	if !seen["offline"] {
		scopes = append([]string{"offline"}, scopes...)
	}
	if !seen["read:recovery"] {
		scopes = append(scopes, "read:recovery")
	}
	return strings.Join(scopes, " ")
}
