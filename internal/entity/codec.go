// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// Decode unmarshals the payload of rec into T.
func Decode[T any](rec models.VersionedRecord) (T, error) {
	var v T
	if err := json.Unmarshal(rec.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload (id=%s): %w", rec.EntityType, rec.ID, err)
	}
	return v, nil
}

// Encode turns an application value into a canonical JSON object payload.
// A [json.RawMessage] or []byte is taken as already-encoded JSON.
func Encode(v any) (json.RawMessage, error) {
	var raw []byte
	switch val := v.(type) {
	case json.RawMessage:
		raw = val
	case []byte:
		raw = val
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		raw = b
	}

	canonical, err := utils.CanonicalObject(raw)
	if err != nil {
		return nil, err
	}
	return canonical, nil
}
