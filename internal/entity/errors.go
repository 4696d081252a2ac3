// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package entity

import "errors"

var (
	ErrMissingName = errors.New("name is required")
	ErrMissingDate = errors.New("date is required")
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
	ErrNegative    = errors.New("quantities must not be negative")
)
