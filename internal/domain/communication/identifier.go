package communication

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordIDLength is the length of a hex-encoded record identifier
const RecordIDLength = 24

// ValidateRecordID rejects anything that is not exactly 24 hex characters.
// It must run before an identifier is placed in a query or a URL.
func ValidateRecordID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return Failure(ErrInvalidIdentifier, err)
	}
	return nil
}

// ValidateRecordIDs validates several identifiers, returning the first failure
func ValidateRecordIDs(ids ...string) error {
	for _, id := range ids {
		if err := ValidateRecordID(id); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeRecordID strips every character outside the hex alphabet and
// returns the result only if exactly 24 characters remain.
func SanitizeRecordID(id string) (string, bool) {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		if isHexByte(id[i]) {
			b.WriteByte(id[i])
		}
	}
	clean := b.String()
	if len(clean) != RecordIDLength {
		return "", false
	}
	return clean, true
}

// ValidateTenantID checks that a tenant id is usable as a single storage path segment
func ValidateTenantID(tenantID string) error {
	if strings.TrimSpace(tenantID) == "" || tenantID != strings.TrimSpace(tenantID) {
		return ErrInvalidIdentifier
	}
	if tenantID == "." || tenantID == ".." || strings.ContainsAny(tenantID, "/\\\x00") {
		return ErrInvalidIdentifier
	}
	return nil
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
