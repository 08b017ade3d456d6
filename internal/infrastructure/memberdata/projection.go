package memberdata

import (
	"strconv"
	"strings"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/jmespath/go-jmespath"
	"go.uber.org/zap"
)

var dateInputLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// project resolves each catalog entry against the decoded source documents
func project(docs map[string]any, catalog communication.FieldCatalog, dateLayout string, log *zap.Logger) map[string]string {
	out := make(map[string]string, len(catalog))
	for _, entry := range catalog {
		doc, ok := docs[entry.Source()]
		if !ok {
			continue
		}
		raw, err := jmespath.Search(expression(entry.Path()), doc)
		if err != nil {
			log.Warn("Invalid field source path", zap.String("key", entry.Key), zap.String("source_path", entry.SourcePath), zap.Error(err))
			continue
		}
		if value, ok := format(raw, entry.DataType, dateLayout); ok {
			out[entry.Key] = value
		}
	}
	return out
}

// expression turns a dotted path into a JMESPath expression. Every name is
// quoted so keys with dashes or spaces work; numeric segments index arrays.
func expression(dotted string) string {
	var b strings.Builder
	for i, seg := range strings.Split(dotted, ".") {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Quote(seg))
	}
	return b.String()
}

// format renders a JSON scalar according to the field data type. Objects,
// arrays and nulls are skipped.
func format(raw any, dataType communication.FieldDataType, dateLayout string) (string, bool) {
	switch v := raw.(type) {
	case string:
		if dataType == communication.FieldTypeDate {
			for _, layout := range dateInputLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t.Format(dateLayout), true
				}
			}
		}
		if dataType == communication.FieldTypeNumber {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64), true
			}
		}
		return v, true
	case float64:
		if dataType == communication.FieldTypeDate {
			// epoch seconds
			return time.Unix(int64(v), 0).UTC().Format(dateLayout), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
