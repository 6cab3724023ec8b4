package utils

import (
	"encoding/json"
	"log"
	"strings"
)

// NormalizeAssignees converts the multipart encodings of a relational list
// field into one canonical ordered slice of ids. The field arrives as one of
// three shapes depending on the client: repeated form fields, a single
// scalar, or a single JSON-encoded array. Order is preserved and duplicates
// are not removed.
func NormalizeAssignees(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	// Repeated form fields are already a materialized sequence.
	if len(values) > 1 {
		normalized := make([]string, len(values))
		copy(normalized, values)
		return normalized
	}

	raw := values[0]

	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var decoded []string

		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			return decoded
		}

		log.Printf("Malformed assignees JSON %q, treating as a single id", raw)
	}

	return []string{raw}
}
