// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"time"

	"github.com/MKhiriev/go-nutri-sync/models"
)

const (
	DefaultMaxPageSize          = 50
	DefaultCacheBudgetBytes     = 20 << 20
	DefaultDataSaverBudgetBytes = 5 << 20
	DefaultDataSaverBatchDelay  = 500 * time.Millisecond

	constrainedBatchSize = 5
	mediumBatchSize      = 10
	fullBatchSize        = 20

	constrainedPageCap = 5
	mediumPageCap      = 10
)

// Limits are the configurable inputs of [Adapt].
type Limits struct {
	// MaxPageSize caps progressive loads on fast links.
	MaxPageSize int
	// CacheBudgetBytes is the cache budget without data saver.
	CacheBudgetBytes int64
	// DataSaverBudgetBytes is the cache budget with data saver on.
	DataSaverBudgetBytes int64
	// DataSaverBatchDelay is slept between sync sub-batches under data saver.
	DataSaverBatchDelay time.Duration
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPageSize:          DefaultMaxPageSize,
		CacheBudgetBytes:     DefaultCacheBudgetBytes,
		DataSaverBudgetBytes: DefaultDataSaverBudgetBytes,
		DataSaverBatchDelay:  DefaultDataSaverBatchDelay,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = d.MaxPageSize
	}
	if l.CacheBudgetBytes <= 0 {
		l.CacheBudgetBytes = d.CacheBudgetBytes
	}
	if l.DataSaverBudgetBytes <= 0 {
		l.DataSaverBudgetBytes = d.DataSaverBudgetBytes
	}
	if l.DataSaverBatchDelay < 0 {
		l.DataSaverBatchDelay = 0
	}
	return l
}

// Adapt maps (class, dataSaver) to the settings every component uses:
//
//	data saver or slow-2g/2g: batch 5, page cap 5
//	3g:                       batch 10, page cap 10
//	otherwise:                batch 20, page cap MaxPageSize
//
// The cache budget only depends on data saver, as does the batch delay.
func Adapt(class models.EffectiveClass, dataSaver bool, limits Limits) models.AdaptiveSettings {
	limits = limits.withDefaults()

	s := models.AdaptiveSettings{
		BatchSize:        fullBatchSize,
		PageCap:          limits.MaxPageSize,
		CacheBudgetBytes: limits.CacheBudgetBytes,
	}

	switch {
	case dataSaver || class.Constrained():
		s.BatchSize = constrainedBatchSize
		s.PageCap = constrainedPageCap
	case class == models.Class3G:
		s.BatchSize = mediumBatchSize
		s.PageCap = mediumPageCap
	}
	s.PageCap = min(s.PageCap, limits.MaxPageSize)

	if dataSaver {
		s.CacheBudgetBytes = limits.DataSaverBudgetBytes
		s.BatchDelay = limits.DataSaverBatchDelay
	}

	return s
}

// ClassifyRTT buckets a measured round trip into an effective class.
func ClassifyRTT(rtt time.Duration) models.EffectiveClass {
	switch {
	case rtt >= 2000*time.Millisecond:
		return models.ClassSlow2G
	case rtt >= 1400*time.Millisecond:
		return models.Class2G
	case rtt >= 270*time.Millisecond:
		return models.Class3G
	default:
		return models.Class4G
	}
}
