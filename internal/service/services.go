// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-nutri-sync/internal/store"
)

// Services are the services of the reference sync endpoint.
type Services struct {
	RemoteService RemoteService
}

func NewServices(s store.Store) *Services {
	return &Services{
		RemoteService: NewRemoteValidationService().Wrap(NewRemoteService(s)),
	}
}
