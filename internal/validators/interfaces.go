// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks records before they enter the store.
//
// The record validator runs on application writes before they are stamped,
// and on versioned records arriving at the reference sync endpoint. Every
// failure is a *FieldError naming the offending field.
package validators

import "context"

// Validator checks v. When fields are given only those are checked.
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
