package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes gin's validator report fields by their json or form
// name. Call it once before serving.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireName)
	}
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// rule messages; %s is the tag parameter, "{unit}" becomes " characters" for strings
var ruleMessages = map[string]string{
	"required": "This field is required",
	"min":      "Must be at least %s{unit}",
	"gte":      "Must be at least %s{unit}",
	"max":      "Must be at most %s{unit}",
	"lte":      "Must be at most %s{unit}",
	"len":      "Must be exactly %s{unit}",
	"oneof":    "Must be one of: %s",
}

// ValidationDetails lists the invalid fields of a binding error, or returns
// nil when err is not a validation failure (malformed JSON for example).
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fe.Field(), Message: ruleMessage(fe)}
	}
	return details
}

func ruleMessage(fe validator.FieldError) string {
	tmpl, ok := ruleMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	tmpl = strings.ReplaceAll(tmpl, "{unit}", unit)
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, fe.Param())
}
