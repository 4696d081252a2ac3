// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package network tracks connectivity and derives the adaptive settings the
// rest of the engine runs with.
//
// A [Monitor] consumes an [InfoProvider] (a [StaticProvider] fed by the host,
// or a [ProbeProvider] that pings the sync endpoint), keeps the current
// [models.NetworkProfile], and calls its resume hook once the link has been
// back online for the settle delay. [Adapt] is the pure mapping from
// bandwidth class and data-saver flag to [models.AdaptiveSettings].
package network
