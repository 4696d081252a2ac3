// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-nutri-sync/internal/validators"
	"github.com/MKhiriev/go-nutri-sync/models"
)

type RemoteValidationService struct {
	inner     RemoteService
	validator validators.Validator
}

func NewRemoteValidationService() RemoteServiceWrapper {
	return &RemoteValidationService{
		validator: validators.NewRecordValidator(),
	}
}

func (v *RemoteValidationService) Wrap(inner RemoteService) RemoteService {
	return &RemoteValidationService{inner: inner, validator: v.validator}
}

func (v *RemoteValidationService) Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.ExchangeAck{}, newValidationError(err)
	}
	return v.inner.Exchange(ctx, req)
}

func (v *RemoteValidationService) Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	req := models.WriteRequest{EntityType: entityType, ID: id}
	if err := v.validator.Validate(ctx, req, validators.FieldEntityType, validators.FieldID); err != nil {
		return models.VersionedRecord{}, newValidationError(err)
	}
	return v.inner.Fetch(ctx, entityType, id)
}
