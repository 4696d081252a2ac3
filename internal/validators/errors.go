// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyEntityType      = errors.New("entity type is required")
	ErrInvalidEntityType    = errors.New("entity type may only contain lowercase letters, digits and underscores")
	ErrEmptyID              = errors.New("id is required")
	ErrIDTooLong            = errors.New("id is too long")
	ErrInvalidID            = errors.New("id must not contain '/' or control characters")
	ErrEmptyPayload         = errors.New("payload is required")
	ErrPayloadNotObject     = errors.New("payload must be a JSON object")
	ErrInvalidPayload       = errors.New("payload is not valid JSON")
	ErrInvalidVersion       = errors.New("version must be positive")
	ErrInvalidBaseVersion   = errors.New("base version must not be negative")
	ErrContentHashMismatch  = errors.New("content hash does not match payload")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrInvalidLastModified  = errors.New("last modified must be positive")
	ErrEmptyOriginClientID  = errors.New("origin client id is required")
	ErrKindValidationFailed = errors.New("payload rejected by entity kind")
)

// FieldError reports which field failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
