// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/app"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
)

// verifyHash checks the HMAC-SHA256 signature of the request body against
// the HashSHA256 header. It is a no-op when no hash key is configured.
func (h *Handler) verifyHash(next http.Handler) http.Handler {
	if h.signer == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		signature := r.Header.Get(adapter.HashHeader)
		if signature == "" {
			log.Warn().Str("func", "*Handler.verifyHash").Msg("request without signature")
			http.Error(w, ErrMissingSignature.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.verifyHash").Msg("error reading request body")
			http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !h.signer.Verify(body, signature) {
			log.Warn().Str("func", "*Handler.verifyHash").Msg("signature mismatch")
			http.Error(w, ErrInvalidSignature.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
