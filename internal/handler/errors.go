// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

var errNoHTTPAddress = errors.New("server http address is empty, nothing to serve")
