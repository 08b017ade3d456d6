package communication

import (
	"regexp"
	"strings"

	"github.com/commhub/backend/internal/domain/shared"
)

// FieldDataType is the value type of a catalog field
type FieldDataType string

const (
	FieldTypeString FieldDataType = "string"
	FieldTypeDate   FieldDataType = "date"
	FieldTypeNumber FieldDataType = "number"
)

// IsValid checks if the FieldDataType is a valid value
func (d FieldDataType) IsValid() bool {
	switch d {
	case FieldTypeString, FieldTypeDate, FieldTypeNumber:
		return true
	}
	return false
}

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// FieldEntry is one entry of the global field catalog. It names a placeholder
// key and where its value comes from in the aggregated member data.
type FieldEntry struct {
	Key        string
	Label      string
	SourcePath string // "<source>.<dotted.path>", e.g. "profile.membershipNumber"
	DataType   FieldDataType
}

// NewFieldEntry validates and builds a catalog entry
func NewFieldEntry(key, label, sourcePath string, dataType FieldDataType) (*FieldEntry, error) {
	key = strings.TrimSpace(key)
	if !fieldKeyPattern.MatchString(key) {
		return nil, shared.NewDomainError("INVALID_FIELD_KEY", "Field key must start with a letter and contain only letters, digits or underscores")
	}
	if dataType == "" {
		dataType = FieldTypeString
	}
	if !dataType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FIELD_TYPE", "Field data type must be string, date or number")
	}
	entry := &FieldEntry{
		Key:        key,
		Label:      strings.TrimSpace(label),
		SourcePath: strings.TrimSpace(sourcePath),
		DataType:   dataType,
	}
	if entry.Source() == "" || entry.Path() == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_PATH", "Source path must look like <source>.<field>")
	}
	if entry.Label == "" {
		entry.Label = key
	}
	return entry, nil
}

// Source returns the upstream source name of the source path
func (f FieldEntry) Source() string {
	src, _, _ := strings.Cut(f.SourcePath, ".")
	return src
}

// Path returns the dotted path inside the source document
func (f FieldEntry) Path() string {
	_, p, _ := strings.Cut(f.SourcePath, ".")
	return p
}

// FieldCatalog is a read-only snapshot of the catalog
type FieldCatalog []FieldEntry

// Has reports whether key is registered. Like placeholder resolution during
// merge, an exact match wins and otherwise keys compare case-insensitively.
func (c FieldCatalog) Has(key string) bool {
	folded := strings.ToLower(key)
	for _, f := range c {
		if f.Key == key || strings.ToLower(f.Key) == folded {
			return true
		}
	}
	return false
}

// Keys returns all registered keys in catalog order
func (c FieldCatalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, f := range c {
		keys = append(keys, f.Key)
	}
	return keys
}
