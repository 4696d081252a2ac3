// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route patterns of the sync contract.
const (
	pingPath    = "/api/ping"
	versionPath = "/api/version"
	syncPath    = "/api/sync/{entityType}/{id}"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	router.Get(pingPath, h.ping)
	router.Get(versionPath, h.getServerVersion)

	router.Group(func(r chi.Router) {
		r.Get(syncPath, h.fetch)
		r.With(h.verifyHash).Post(syncPath, h.exchange)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
