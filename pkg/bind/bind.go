// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 4 << 20 // 4 MB cap against memory exhaustion

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSON decodes r.Body as JSON into dest and runs struct-tag validation.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := validate.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			errs = make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				errs[fieldName(fe)] = message(fe)
			}
			return errs, nil
		}
		return nil, err
	}

	return nil, nil
}

// fieldName lowercases the first rune so error keys match the JSON field
// names the client sent.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fieldName(fe))
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fieldName(fe))
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", fieldName(fe))
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", fieldName(fe), fe.Param())
	case "max":
		return fmt.Sprintf("The %s field may not be greater than %s characters.", fieldName(fe), fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", fieldName(fe), fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", fieldName(fe))
	}
}
