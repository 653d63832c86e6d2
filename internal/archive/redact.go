package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: SSNs and dates look like fragments of phone numbers.
var noteRedactions = []redaction{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{regexp.MustCompile(`\b(0?[1-9]|1[0-2])/(0?[1-9]|[12]\d|3[01])/(19|20)\d{2}\b`), "[DATE]"},
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[EMAIL]"},
	{regexp.MustCompile(`(\+?1[-.\s]?)?\(?\b[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`), "[PHONE]"},
}

// HashUserID returns the hex SHA-256 of a user id. Manifests carry the hash so the
// bucket listing never exposes raw ids.
func HashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// RedactNotes masks identifiers a patient may type into a reading's free-text notes
// before the notes leave the primary store.
func RedactNotes(notes string) string {
	for _, r := range noteRedactions {
		notes = r.pattern.ReplaceAllString(notes, r.replacement)
	}
	return strings.TrimSpace(notes)
}
