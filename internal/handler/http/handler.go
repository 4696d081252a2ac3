// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
)

type Handler struct {
	services *service.Services

	// signer is nil when requests are not signed.
	signer  *utils.Signer
	version string

	logger *logger.Logger
}

func NewHandler(services *service.Services, app config.App, logger *logger.Logger) *Handler {
	logger.Info().Bool("signed_requests", app.HashKey != "").Msg("http handler created")
	return &Handler{
		services: services,
		signer:   utils.NewSigner(app.HashKey),
		version:  app.Version,
		logger:   logger,
	}
}
