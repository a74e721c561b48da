package service

import (
	"fmt"
	"strings"
	"unicode"

	"go-batch-inventory/pkg/validator"
)

// fieldErrors converts validator failures into the per-field error map the
// API returns, keyed by the JSON name of the offending field.
func fieldErrors(errs []*validator.ErrorResponse) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[jsonFieldName(e.FailedField)] = fieldMessage(e)
	}
	return fields
}

func fieldMessage(e *validator.ErrorResponse) string {
	switch e.Tag {
	case "required":
		return "This field is required."
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", e.Value)
	case "gte":
		return fmt.Sprintf("Must be at least %s.", e.Value)
	case "sku":
		return "SKU must be uppercase letters, digits and dashes."
	case "email":
		return "Must be a valid email address."
	default:
		return fmt.Sprintf("Failed validation rule '%s'.", e.Tag)
	}
}

// jsonFieldName maps a validator struct namespace like
// "ReceiveBatchRequest.ProductID" to its JSON key ("productId").
func jsonFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	name := parts[len(parts)-1]

	// Initialisms: SKU -> sku, ProductID -> productId.
	if name == strings.ToUpper(name) {
		return strings.ToLower(name)
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}

	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
