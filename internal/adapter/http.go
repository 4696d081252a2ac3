// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-nutri-sync/internal/config"
	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
)

const (
	// HashHeader carries the hex HMAC-SHA256 of the request body.
	HashHeader = "HashSHA256"
	// ClientIDHeader names the writing device on every request.
	ClientIDHeader = "X-Client-ID"

	syncPathPattern = "/api/sync/{entityType}/{id}"
	pingPath        = "/api/ping"
)

type httpRemoteEndpoint struct {
	client *utils.HTTPClient

	signer *utils.Signer

	logger *logger.Logger
}

// NewHTTPRemoteEndpoint constructs an HTTP/REST implementation of
// [RemoteEndpoint]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the underlying resty client with the
// resolved base URL and request timeout, and signs request bodies into the
// HashSHA256 header when a hash key is set.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteEndpoint(adapterCfg config.Adapter, appCfg config.App, log *logger.Logger) (RemoteEndpoint, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")
	if appCfg.ClientID != "" {
		client.SetHeader(ClientIDHeader, appCfg.ClientID)
	}

	return &httpRemoteEndpoint{client: client, signer: utils.NewSigner(appCfg.HashKey), logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Exchange implements [RemoteEndpoint]. It POSTs req to
// POST /api/sync/{entityType}/{id}, signing the body when a hash key is
// configured. A 409 body is decoded into a [*ConflictError].
func (h *httpRemoteEndpoint) Exchange(ctx context.Context, req models.ExchangeRequest) (models.ExchangeAck, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.ExchangeAck{}, fmt.Errorf("encode exchange request: %w", err)
	}

	r := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"entityType": req.Record.EntityType.String(),
			"id":         req.Record.ID,
		}).
		SetBody(body)
	if h.signer != nil {
		r.SetHeader(HashHeader, h.signer.Sign(body))
	}

	resp, err := r.Post(syncPathPattern)
	if err != nil {
		return models.ExchangeAck{}, fmt.Errorf("%w: exchange request: %w", ErrNetwork, err)
	}

	if resp.StatusCode() == http.StatusConflict {
		var conflict models.ConflictResponse
		if err = json.Unmarshal(resp.Body(), &conflict); err != nil || conflict.Remote.ID == "" {
			logger.FromContext(ctx).Error().Str("func", "httpRemoteEndpoint.Exchange").
				Str("entity_type", req.Record.EntityType.String()).
				Str("id", req.Record.ID).
				Msg("conflict response without remote snapshot")
			return models.ExchangeAck{}, fmt.Errorf("%w: conflict body: %w", ErrInvalidResponse, mapHTTPError(resp))
		}
		return models.ExchangeAck{}, &ConflictError{Remote: conflict.Remote}
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ExchangeAck{}, err
	}

	var ack models.ExchangeAck
	if err = json.Unmarshal(resp.Body(), &ack); err != nil {
		return models.ExchangeAck{}, fmt.Errorf("%w: decode exchange ack: %w", ErrInvalidResponse, err)
	}
	return ack, nil
}

// Fetch implements [RemoteEndpoint]. It GETs /api/sync/{entityType}/{id}.
func (h *httpRemoteEndpoint) Fetch(ctx context.Context, entityType models.EntityType, id string) (models.VersionedRecord, error) {
	var record models.VersionedRecord

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"entityType": entityType.String(),
			"id":         id,
		}).
		SetResult(&record).
		Get(syncPathPattern)
	if err != nil {
		return models.VersionedRecord{}, fmt.Errorf("%w: fetch request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VersionedRecord{}, err
	}

	return record, nil
}

// Ping implements [RemoteEndpoint]. Any 2xx answer from GET /api/ping counts
// as reachable.
func (h *httpRemoteEndpoint) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(pingPath)
	if err != nil {
		return fmt.Errorf("%w: ping request: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}
