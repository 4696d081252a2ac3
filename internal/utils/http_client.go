// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient is the resty client used by the remote adapter. Every instance
// owns its connection pool and accepts JSON by default.
type HTTPClient struct {
	*resty.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New().SetHeader("Accept", "application/json")}
}
