// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/MKhiriev/go-nutri-sync/internal/entity"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	FieldEntityType     = "entity_type"
	FieldID             = "id"
	FieldPayload        = "payload"
	FieldVersion        = "version"
	FieldLastModified   = "last_modified"
	FieldOriginClientID = "origin_client_id"
	FieldContentHash    = "content_hash"
	FieldOperation      = "operation"
	FieldBaseVersion    = "base_version"
	FieldRecord         = "record"
)

// MaxIDLength bounds record ids so they stay usable as URL path segments.
const MaxIDLength = 256

// RecordValidator validates [models.WriteRequest], [models.VersionedRecord]
// and [models.ExchangeRequest] values.
type RecordValidator struct {
}

func NewRecordValidator() Validator {
	return &RecordValidator{}
}

func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.WriteRequest:
		return v.validateWriteRequest(ctx, value, fields...)
	case *models.WriteRequest:
		return v.validateWriteRequest(ctx, *value, fields...)

	case models.VersionedRecord:
		return v.validateRecord(ctx, value, fields...)
	case *models.VersionedRecord:
		return v.validateRecord(ctx, *value, fields...)

	case models.ExchangeRequest:
		return v.validateExchangeRequest(ctx, value, fields...)
	case *models.ExchangeRequest:
		return v.validateExchangeRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *RecordValidator) validateWriteRequest(_ context.Context, req models.WriteRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEntityType, FieldID, FieldPayload}
	}

	for _, f := range fields {
		var err error
		switch f {
		case FieldEntityType:
			err = validateEntityType(req.EntityType)
		case FieldID:
			err = validateID(req.ID)
		case FieldPayload:
			err = validatePayload(req.EntityType, req.Payload)
		default:
			return ErrUnknownField
		}
		if err != nil {
			return fieldError(f, err)
		}
	}

	return nil
}

func (v *RecordValidator) validateRecord(ctx context.Context, rec models.VersionedRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldEntityType, FieldID, FieldPayload, FieldVersion, FieldLastModified, FieldOriginClientID, FieldContentHash}
	}

	for _, f := range fields {
		var err error
		switch f {
		case FieldEntityType, FieldID, FieldPayload:
			if err := v.validateWriteRequest(ctx, models.WriteRequest{
				EntityType: rec.EntityType,
				ID:         rec.ID,
				Payload:    rec.Payload,
			}, f); err != nil {
				return err
			}
		case FieldVersion:
			if rec.Version < 1 {
				err = ErrInvalidVersion
			}
		case FieldLastModified:
			if rec.LastModified <= 0 {
				err = ErrInvalidLastModified
			}
		case FieldOriginClientID:
			if strings.TrimSpace(rec.OriginClientID) == "" {
				err = ErrEmptyOriginClientID
			}
		case FieldContentHash:
			err = validateContentHash(rec)
		default:
			return ErrUnknownField
		}
		if err != nil {
			return fieldError(f, err)
		}
	}

	return nil
}

func (v *RecordValidator) validateExchangeRequest(ctx context.Context, req models.ExchangeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOperation, FieldBaseVersion, FieldRecord}
	}

	for _, f := range fields {
		switch f {
		case FieldOperation:
			switch req.Operation {
			case models.OperationCreate, models.OperationUpdate, models.OperationDelete:
			default:
				return fieldError(f, fmt.Errorf("%w: %q", ErrInvalidOperation, req.Operation))
			}
		case FieldBaseVersion:
			if req.BaseVersion < 0 {
				return fieldError(f, ErrInvalidBaseVersion)
			}
		case FieldRecord:
			if err := v.validateRecord(ctx, req.Record); err != nil {
				return fmt.Errorf("%s.%w", FieldRecord, err)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateEntityType(t models.EntityType) error {
	if t == "" {
		return ErrEmptyEntityType
	}
	for _, r := range string(t) {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return ErrInvalidEntityType
		}
	}
	return nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	if len(id) > MaxIDLength {
		return ErrIDTooLong
	}
	if strings.ContainsFunc(id, func(r rune) bool { return r == '/' || unicode.IsControl(r) }) {
		return ErrInvalidID
	}
	return nil
}

func validatePayload(t models.EntityType, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	canonical, err := utils.CanonicalObject(payload)
	if err != nil {
		if errors.Is(err, utils.ErrPayloadNotObject) {
			return ErrPayloadNotObject
		}
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err = entity.KindOf(t).Validate(canonical); err != nil {
		return fmt.Errorf("%w: %w", ErrKindValidationFailed, err)
	}
	return nil
}

func validateContentHash(rec models.VersionedRecord) error {
	hash, err := utils.ContentHash(rec.Payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if hash != rec.ContentHash {
		return ErrContentHashMismatch
	}
	return nil
}
