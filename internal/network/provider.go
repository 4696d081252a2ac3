// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"sync"

	"github.com/MKhiriev/go-nutri-sync/models"
)

//go:generate mockgen -source=provider.go -destination=../mock/network_mock.go -package=mock

// InfoProvider is the source of connectivity signals.
type InfoProvider interface {
	// Current returns the latest known profile.
	Current() models.NetworkProfile
	// Changes delivers profile updates in order.
	Changes() <-chan models.NetworkProfile
}

const changesBuffer = 16

// StaticProvider is an [InfoProvider] driven by its owner: the host app
// forwards platform events with Set, tests script transitions with it.
type StaticProvider struct {
	mu      sync.Mutex
	current models.NetworkProfile
	changes chan models.NetworkProfile
}

// NewStaticProvider constructs a provider starting at initial.
func NewStaticProvider(initial models.NetworkProfile) *StaticProvider {
	return &StaticProvider{
		current: initial,
		changes: make(chan models.NetworkProfile, changesBuffer),
	}
}

func (p *StaticProvider) Current() models.NetworkProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *StaticProvider) Changes() <-chan models.NetworkProfile {
	return p.changes
}

// Set records profile and emits it. When the buffer is full the oldest
// pending update is dropped; consumers only care about the latest state.
func (p *StaticProvider) Set(profile models.NetworkProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = profile
	publishLatest(p.changes, profile)
}

// publishLatest sends profile on ch, evicting the oldest pending update when
// ch is full. Callers serialize sends on the same channel.
func publishLatest(ch chan models.NetworkProfile, profile models.NetworkProfile) (evicted bool) {
	for {
		select {
		case ch <- profile:
			return evicted
		default:
			select {
			case <-ch:
				evicted = true
			default:
			}
		}
	}
}

// SetOnline is shorthand for toggling Online on the current profile.
func (p *StaticProvider) SetOnline(online bool) {
	profile := p.Current()
	profile.Online = online
	p.Set(profile)
}
