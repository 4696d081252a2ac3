// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-nutri-sync/internal/app"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/go-chi/chi/v5"
)

// exchange handles POST /api/sync/{entityType}/{id}.
//
// The record in the body must name the same entity type and id as the path.
// A stale write is answered with 409 and the server's current row.
func (h *Handler) exchange(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.exchange").Msg("invalid json was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	entityType, id := pathKey(r)
	if req.Record.EntityType != entityType || req.Record.ID != id {
		log.Warn().Str("func", "*Handler.exchange").
			Str("path_entity_type", entityType.String()).Str("path_id", id).
			Str("entity_type", req.Record.EntityType.String()).Str("id", req.Record.ID).
			Msg("record does not match request path")
		http.Error(w, ErrPathMismatch.Error(), http.StatusBadRequest)
		return
	}

	ack, err := h.services.RemoteService.Exchange(r.Context(), req)
	if err != nil {
		if current, ok := service.AsVersionConflict(err); ok {
			if _, err = utils.WriteJSON(w, models.ConflictResponse{Remote: current}, http.StatusConflict); err != nil {
				log.Err(err).Str("func", "*Handler.exchange").Msg("error writing conflict response")
			}
			return
		}
		log.Err(err).Str("func", "*Handler.exchange").Msg("exchange failed")
		writeError(w, err)
		return
	}

	if _, err = utils.WriteJSON(w, ack, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.exchange").Msg("error writing exchange ack")
	}
}

// fetch handles GET /api/sync/{entityType}/{id}.
func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	entityType, id := pathKey(r)

	record, err := h.services.RemoteService.Fetch(r.Context(), entityType, id)
	if err != nil {
		log.Err(err).Str("func", "*Handler.fetch").
			Str("entity_type", entityType.String()).Str("id", id).Msg("fetch failed")
		writeError(w, err)
		return
	}

	if _, err = utils.WriteJSON(w, record, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.fetch").Msg("error writing record")
	}
}

func pathKey(r *http.Request) (models.EntityType, string) {
	return models.EntityType(chi.URLParam(r, "entityType")), chi.URLParam(r, "id")
}
