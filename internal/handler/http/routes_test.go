// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-nutri-sync/internal/adapter"
	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/store"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	h := NewHandler(service.NewServices(s), config.App{HashKey: testHashKey, Version: "dev"}, logger.Nop())
	srv := httptest.NewServer(h.Init())
	t.Cleanup(srv.Close)
	return srv
}

func postExchange(t *testing.T, srv *httptest.Server, req models.ExchangeRequest) *http.Response {
	t.Helper()
	body := exchangeBody(t, req)
	r, err := http.NewRequest(http.MethodPost,
		srv.URL+"/api/sync/"+req.Record.EntityType.String()+"/"+req.Record.ID, bytes.NewReader(body))
	require.NoError(t, err)
	r.Header.Set(adapter.HashHeader, utils.NewSigner(testHashKey).Sign(body))
	r.Header.Set(adapter.ClientIDHeader, req.Record.OriginClientID)

	resp, err := srv.Client().Do(r)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoutes_ExchangeLifecycle(t *testing.T) {
	srv := newMemoryServer(t)
	record := testRecord(t)

	resp := postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationCreate, Record: record})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decodeBody[models.ExchangeAck](t, resp).Version)

	// a retried delivery of the same content is acknowledged idempotently
	resp = postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationCreate, Record: record})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), decodeBody[models.ExchangeAck](t, resp).Version)

	// another device writes on top of version 1
	other := record.Clone()
	other.OriginClientID = "device-b"
	other.Payload = json.RawMessage(`{"name":"oat porridge","calories":350}`)
	other.ContentHash, _ = utils.ContentHash(other.Payload)
	resp = postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationUpdate, BaseVersion: 1, Record: other})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decodeBody[models.ExchangeAck](t, resp).Version)

	// the first device is now stale
	stale := record.Clone()
	stale.Payload = json.RawMessage(`{"name":"oat porridge","calories":300}`)
	stale.ContentHash, _ = utils.ContentHash(stale.Payload)
	resp = postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationUpdate, BaseVersion: 1, Record: stale})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	conflict := decodeBody[models.ConflictResponse](t, resp)
	assert.Equal(t, int64(2), conflict.Remote.Version)
	assert.Equal(t, "device-b", conflict.Remote.OriginClientID)

	get, err := srv.Client().Get(srv.URL + "/api/sync/recipe/r1")
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, other.ContentHash, decodeBody[models.VersionedRecord](t, get).ContentHash)
}

func TestRoutes_DeleteLeavesTombstone(t *testing.T) {
	srv := newMemoryServer(t)
	record := testRecord(t)

	resp := postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationCreate, Record: record})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationDelete, BaseVersion: 1, Record: record})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decodeBody[models.ExchangeAck](t, resp).Version)

	get, err := srv.Client().Get(srv.URL + "/api/sync/recipe/r1")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusNotFound, get.StatusCode)

	// a writer that never saw the deletion gets the tombstone back
	resp = postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationUpdate, BaseVersion: 1, Record: record})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, decodeBody[models.ConflictResponse](t, resp).Remote.Deleted)
}

func TestRoutes_RejectsInvalidRecord(t *testing.T) {
	srv := newMemoryServer(t)
	record := testRecord(t)
	record.ContentHash = ""

	resp := postExchange(t, srv, models.ExchangeRequest{Operation: models.OperationCreate, Record: record})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
