// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-nutri-sync/internal/app"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:      http.StatusBadRequest,
	service.ErrVersionConflict: http.StatusConflict,
	ErrPathMismatch:            http.StatusBadRequest,
	ErrMissingSignature:        http.StatusBadRequest,
	ErrInvalidSignature:        http.StatusBadRequest,

	store.ErrNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
	store.ErrEncodingColumn:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status mapped from err. Internal failures are
// reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	switch status {
	case http.StatusInternalServerError:
		http.Error(w, app.MsgInternalServerError, status)
	case http.StatusNotFound:
		http.Error(w, app.MsgDataNotFound, status)
	default:
		http.Error(w, err.Error(), status)
	}
}
