// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckHTTPMethod(t *testing.T) {
	router := newTestHandler(&mockRemoteService{}, "").Init()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/sync/recipe/r1"},
		{http.MethodDelete, "/api/sync/recipe/r1"},
		{http.MethodPost, "/api/ping"},
		{http.MethodPost, "/api/version"},
		{http.MethodGet, "/api/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
