// Package validation wraps go-playground/validator with a shared instance,
// the custom tags used by moviedb, and translation of field errors into
// messages a user can act on.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed field
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error is returned by ValidateStruct when at least one field fails
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Messages(), "; ")
}

// Messages returns one message per failed field, deduplicated, in field order
func (e *Error) Messages() []string {
	seen := make(map[string]bool, len(e.Fields))
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if seen[f.Message] {
			continue
		}
		seen[f.Message] = true
		messages = append(messages, f.Message)
	}
	return messages
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "movie", "tv":
				return true
			}
			return false
		})
		_ = validate.RegisterValidation("dataurl", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,")
		})
	})
	return validate
}

// ValidateStruct validates s. It returns nil or an error of type *Error.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &Error{Fields: fields}
}

// messageOverrides carries user-facing text keyed by "Field.tag"
var messageOverrides = map[string]string{
	"Email.required":           "Invalid email address",
	"Email.email":              "Invalid email address",
	"Password.required":        "Incorrect password (min. 6 characters)",
	"Password.min":             "Incorrect password (min. 6 characters)",
	"ConfirmPassword.required": "Incorrect password (min. 6 characters)",
	"ConfirmPassword.min":      "Incorrect password (min. 6 characters)",
	"ConfirmPassword.eqfield":  "Passwords must be the same",
	"Name.max":                 "Name is too long. Must be less than 15 characters",
}

var messageTemplates = map[string]string{
	"required":  "%s is required",
	"email":     "%s must be a valid email address",
	"url":       "%s must be a valid URL",
	"mediatype": "%s must be movie or tv",
	"dataurl":   "%s must be a base64 data URL",
}

var messageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translate(fe validator.FieldError) string {
	if msg, ok := messageOverrides[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := messageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
