// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/service"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/require"
)

const testHashKey = "test-hash-key"

type mockRemoteService struct {
	exchangeFn func(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error)
	fetchFn    func(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error)
}

func (m *mockRemoteService) Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error) {
	return m.exchangeFn(ctx, req)
}

func (m *mockRemoteService) Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	return m.fetchFn(ctx, entityType, id)
}

func newTestHandler(svc service.RemoteService, hashKey string) *Handler {
	return NewHandler(&service.Services{RemoteService: svc}, config.App{HashKey: hashKey, Version: "1.2.3"}, logger.Nop())
}

func testRecord(t *testing.T) models.VersionedRecord {
	t.Helper()
	payload := json.RawMessage(`{"name":"oat porridge","calories":320}`)
	hash, err := utils.ContentHash(payload)
	require.NoError(t, err)
	return models.VersionedRecord{
		ID:             "r1",
		EntityType:     models.EntityRecipe,
		Payload:        payload,
		Version:        1,
		LastModified:   1767225600000,
		OriginClientID: "device-a",
		ContentHash:    hash,
		SyncStatus:     models.SyncStatusPending,
	}
}

func exchangeBody(t *testing.T, req models.ExchangeRequest) []byte {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}
