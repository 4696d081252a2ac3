// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// DefaultProbeInterval is used when ProbeProvider is given no interval.
const DefaultProbeInterval = 30 * time.Second

// Pinger is the part of the remote endpoint the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeProvider is an [InfoProvider] that derives the profile by pinging the
// sync endpoint: a failed ping means offline, otherwise the round trip is
// bucketed with [ClassifyRTT]. DataSaver comes from configuration.
type ProbeProvider struct {
	pinger    Pinger
	interval  time.Duration
	timeout   time.Duration
	dataSaver bool
	clock     utils.Clock

	mu      sync.Mutex
	current models.NetworkProfile
	changes chan models.NetworkProfile
}

// NewProbeProvider constructs a probe. It reports offline until the first
// successful ping.
func NewProbeProvider(pinger Pinger, interval, timeout time.Duration, dataSaver bool) *ProbeProvider {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &ProbeProvider{
		pinger:    pinger,
		interval:  interval,
		timeout:   timeout,
		dataSaver: dataSaver,
		clock:     utils.SystemClock{},
		current:   models.NetworkProfile{EffectiveClass: models.ClassUnknown, DataSaver: dataSaver},
		changes:   make(chan models.NetworkProfile, changesBuffer),
	}
}

func (p *ProbeProvider) Current() models.NetworkProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *ProbeProvider) Changes() <-chan models.NetworkProfile {
	return p.changes
}

// Run probes immediately and then every interval until ctx is done.
func (p *ProbeProvider) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Probe(ctx)
		}
	}
}

// Probe pings once and publishes the resulting profile if it changed.
func (p *ProbeProvider) Probe(ctx context.Context) models.NetworkProfile {
	log := logger.FromContext(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.clock.Now()
	err := p.pinger.Ping(pingCtx)
	rtt := p.clock.Now().Sub(start)

	profile := models.NetworkProfile{DataSaver: p.dataSaver}
	if err != nil {
		log.Debug().Err(err).Str("func", "ProbeProvider.Probe").Msg("probe failed, reporting offline")
		profile.EffectiveClass = models.ClassUnknown
	} else {
		profile.Online = true
		profile.RTTMillis = rtt.Milliseconds()
		profile.EffectiveClass = ClassifyRTT(rtt)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	changed := profile.Online != p.current.Online || profile.EffectiveClass != p.current.EffectiveClass
	p.current = profile

	if changed && publishLatest(p.changes, profile) {
		log.Debug().Str("func", "ProbeProvider.Probe").Msg("consumer is behind, oldest profile change dropped")
	}
	return profile
}
