// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/models"
)

// DefaultSettleDelay is the time the link must stay online before a resume.
const DefaultSettleDelay = 2 * time.Second

// ResumeFunc is called after an offline to online transition has settled.
type ResumeFunc func(ctx context.Context)

// Monitor owns the current network profile. Other components only read it
// through Profile, Settings and Online.
type Monitor struct {
	provider    InfoProvider
	limits      Limits
	settleDelay time.Duration
	logger      *logger.Logger

	mu       sync.RWMutex
	profile  models.NetworkProfile
	settings models.AdaptiveSettings
	onResume ResumeFunc

	resumes sync.WaitGroup
}

// NewMonitor constructs a monitor seeded with provider's current profile.
func NewMonitor(provider InfoProvider, limits Limits, settleDelay time.Duration, log *logger.Logger) *Monitor {
	if settleDelay < 0 {
		settleDelay = DefaultSettleDelay
	}
	profile := provider.Current()
	return &Monitor{
		provider:    provider,
		limits:      limits,
		settleDelay: settleDelay,
		logger:      log,
		profile:     profile,
		settings:    Adapt(profile.EffectiveClass, profile.DataSaver, limits),
	}
}

// OnResume registers the hook run after reconnects. It replaces any earlier
// hook.
func (m *Monitor) OnResume(fn ResumeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onResume = fn
}

// Profile returns a copy of the current profile.
func (m *Monitor) Profile() models.NetworkProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Settings returns the adaptive settings for the current profile.
func (m *Monitor) Settings() models.AdaptiveSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Online reports current connectivity.
func (m *Monitor) Online() bool {
	return m.Profile().Online
}

// Run consumes provider changes until ctx is done or the change channel is
// closed, then waits for in-flight resume hooks.
func (m *Monitor) Run(ctx context.Context) {
	defer m.resumes.Wait()

	var (
		settleTimer *time.Timer
		settled     <-chan time.Time
	)
	stopSettle := func() {
		if settleTimer != nil {
			settleTimer.Stop()
		}
		settleTimer, settled = nil, nil
	}
	defer stopSettle()

	changes := m.provider.Changes()
	for {
		select {
		case <-ctx.Done():
			return

		case profile, ok := <-changes:
			if !ok {
				return
			}
			wentOnline, wentOffline := m.apply(profile)
			switch {
			case wentOnline:
				stopSettle()
				settleTimer = time.NewTimer(m.settleDelay)
				settled = settleTimer.C
			case wentOffline:
				if settled != nil {
					m.logger.Debug().Str("func", "Monitor.Run").Msg("link dropped before settling, resume cancelled")
				}
				stopSettle()
			}

		case <-settled:
			settleTimer, settled = nil, nil
			m.resume(ctx)
		}
	}
}

// Observe records a profile measured outside Run, such as a one-off probe
// before a manual sync. It never triggers the resume hook.
func (m *Monitor) Observe(profile models.NetworkProfile) {
	m.apply(profile)
}

// apply stores profile and reports online transitions.
func (m *Monitor) apply(profile models.NetworkProfile) (wentOnline, wentOffline bool) {
	m.mu.Lock()
	prev := m.profile
	m.profile = profile
	if prev.EffectiveClass != profile.EffectiveClass || prev.DataSaver != profile.DataSaver {
		m.settings = Adapt(profile.EffectiveClass, profile.DataSaver, m.limits)
		m.logger.Info().
			Str("func", "Monitor.apply").
			Str("class", string(profile.EffectiveClass)).
			Bool("data_saver", profile.DataSaver).
			Int("batch_size", m.settings.BatchSize).
			Int("page_cap", m.settings.PageCap).
			Int64("cache_budget", m.settings.CacheBudgetBytes).
			Msg("adaptive settings recomputed")
	}
	m.mu.Unlock()

	return !prev.Online && profile.Online, prev.Online && !profile.Online
}

func (m *Monitor) resume(ctx context.Context) {
	m.mu.RLock()
	hook := m.onResume
	online := m.profile.Online
	m.mu.RUnlock()

	if hook == nil || !online {
		return
	}

	m.logger.Info().Str("func", "Monitor.resume").Msg("connection settled, resuming sync")
	m.resumes.Add(1)
	go func() {
		defer m.resumes.Done()
		hook(ctx)
	}()
}
