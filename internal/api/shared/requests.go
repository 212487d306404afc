package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

// ErrUnknownField is wrapped by DecodeJSONStrict when the request body
// carries a field the target struct does not define.
var ErrUnknownField = errors.New("unknown field")

// DecodeJSONStrict decodes the request body into the given struct, rejecting
// unknown fields. An unknown field yields an error wrapping ErrUnknownField
// naming the offending field; any other failure means the body is malformed.
func DecodeJSONStrict(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		// encoding/json reports unknown fields only through the error text:
		// `json: unknown field "status"`.
		if field, ok := unknownFieldName(err); ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		return err
	}

	return nil
}

// unknownFieldName extracts the field name from an encoding/json unknown
// field error.
func unknownFieldName(err error) (string, bool) {
	msg := err.Error()
	const marker = "unknown field "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return "", false
	}
	return strings.Trim(msg[idx+len(marker):], `"`), true
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}
