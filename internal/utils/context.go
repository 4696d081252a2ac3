// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helpers shared by the client engine
// and the reference sync endpoint: canonical payload hashing, HMAC request
// signing, clocks, id generation, context keys and HTTP helpers.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// ClientIDCtxKey stores the id of the device that issued a sync request.
var ClientIDCtxKey = contextKey("clientID")

// WithClientID returns a copy of ctx carrying clientID.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientIDCtxKey, clientID)
}

// GetClientIDFromContext returns the client id stored by [WithClientID].
// ok is false when the value is missing or empty.
func GetClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ClientIDCtxKey).(string)
	return clientID, ok && clientID != ""
}
