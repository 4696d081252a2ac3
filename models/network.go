// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EffectiveClass is the bandwidth class reported by the platform.
type EffectiveClass string

const (
	ClassSlow2G  EffectiveClass = "slow-2g"
	Class2G      EffectiveClass = "2g"
	Class3G      EffectiveClass = "3g"
	Class4G      EffectiveClass = "4g"
	ClassUnknown EffectiveClass = "unknown"
)

// Constrained reports whether the class is slow-2g or 2g.
func (c EffectiveClass) Constrained() bool {
	return c == ClassSlow2G || c == Class2G
}

// NetworkProfile is the read-only view of connectivity shared by every
// component of the engine.
type NetworkProfile struct {
	Online         bool           `json:"online"`
	EffectiveClass EffectiveClass `json:"effectiveClass"`
	DownlinkMbps   float64        `json:"downlinkMbps"`
	RTTMillis      int64          `json:"rttMs"`
	DataSaver      bool           `json:"dataSaver"`
}

// AdaptiveSettings are derived from (EffectiveClass, DataSaver) and drive
// sync batching, page sizes and the cache budget.
type AdaptiveSettings struct {
	// BatchSize is the number of queue entries exchanged per sub-batch.
	BatchSize int `json:"batchSize"`
	// PageCap caps the number of records a progressive load yields.
	PageCap int `json:"pageCap"`
	// CacheBudgetBytes bounds the total size of the read cache.
	CacheBudgetBytes int64 `json:"cacheBudgetBytes"`
	// BatchDelay is slept between sync sub-batches; zero disables it.
	BatchDelay time.Duration `json:"batchDelay"`
}
