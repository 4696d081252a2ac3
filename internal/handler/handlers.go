// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/handler/http"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
)

// Handlers groups the transports of the reference sync endpoint.
type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, app config.App, logger *logger.Logger) (*Handlers, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoHTTPAddress
	}

	logger.Info().Str("func", "NewHandlers").Str("address", cfg.HTTPAddress).Msg("http transport enabled")
	return &Handlers{HTTP: http.NewHandler(services, app, logger)}, nil
}
