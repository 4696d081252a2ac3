// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package network

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-nutri-sync/internal/logger"
	"github.com/MKhiriev/go-nutri-sync/internal/mock"
	"github.com/MKhiriev/go-nutri-sync/internal/utils"
	"github.com/MKhiriev/go-nutri-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func online4G() models.NetworkProfile {
	return models.NetworkProfile{Online: true, EffectiveClass: models.Class4G, DownlinkMbps: 10, RTTMillis: 50}
}

func startMonitor(t *testing.T, m *Monitor) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

// ── Monitor ─────────────────────────────────────────────────────────────────

func TestMonitor_SeededFromProvider(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{Online: true, EffectiveClass: models.Class3G})
	m := NewMonitor(p, DefaultLimits(), 10*time.Millisecond, logger.Nop())

	assert.True(t, m.Online())
	assert.Equal(t, models.Class3G, m.Profile().EffectiveClass)
	assert.Equal(t, 10, m.Settings().BatchSize)
}

func TestMonitor_RecomputesSettingsOnClassChange(t *testing.T) {
	p := NewStaticProvider(online4G())
	m := NewMonitor(p, DefaultLimits(), 10*time.Millisecond, logger.Nop())
	stop := startMonitor(t, m)
	defer stop()

	p.Set(models.NetworkProfile{Online: true, EffectiveClass: models.Class2G})
	require.Eventually(t, func() bool { return m.Settings().BatchSize == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, m.Settings().PageCap)

	p.Set(models.NetworkProfile{Online: true, EffectiveClass: models.Class4G, DataSaver: true})
	require.Eventually(t, func() bool { return m.Settings().CacheBudgetBytes == 5<<20 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, m.Settings().BatchSize)
}

func TestMonitor_ObserveUpdatesWithoutResume(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{EffectiveClass: models.ClassUnknown})
	m := NewMonitor(p, DefaultLimits(), 0, logger.Nop())

	var resumed atomic.Bool
	m.OnResume(func(context.Context) { resumed.Store(true) })

	m.Observe(online4G())

	assert.True(t, m.Online())
	assert.Equal(t, 20, m.Settings().BatchSize)
	assert.False(t, resumed.Load())
}

func TestMonitor_ResumeAfterSettleDelay(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{Online: false})
	m := NewMonitor(p, DefaultLimits(), 20*time.Millisecond, logger.Nop())

	var resumes atomic.Int32
	m.OnResume(func(context.Context) { resumes.Add(1) })

	stop := startMonitor(t, m)
	defer stop()

	p.Set(online4G())
	require.Eventually(t, func() bool { return resumes.Load() == 1 }, time.Second, 5*time.Millisecond)

	// staying online does not resume again
	p.Set(models.NetworkProfile{Online: true, EffectiveClass: models.Class3G})
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), resumes.Load())
}

func TestMonitor_DropBeforeSettleCancelsResume(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{Online: false})
	m := NewMonitor(p, DefaultLimits(), 80*time.Millisecond, logger.Nop())

	var resumes atomic.Int32
	m.OnResume(func(context.Context) { resumes.Add(1) })

	stop := startMonitor(t, m)
	defer stop()

	p.SetOnline(true)
	time.Sleep(20 * time.Millisecond)
	p.SetOnline(false)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), resumes.Load())
	assert.False(t, m.Online())
}

func TestMonitor_NoHookIsFine(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{})
	m := NewMonitor(p, DefaultLimits(), time.Millisecond, logger.Nop())
	stop := startMonitor(t, m)

	p.Set(online4G())
	require.Eventually(t, m.Online, time.Second, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	stop()
}

func TestMonitor_StopsOnContextCancel(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{})
	m := NewMonitor(p, DefaultLimits(), time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitor_DrivenByProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mock.NewMockInfoProvider(ctrl)

	changes := make(chan models.NetworkProfile, 2)
	gomock.InOrder(
		provider.EXPECT().Current().Return(models.NetworkProfile{Online: false, EffectiveClass: models.ClassSlow2G}).Times(1),
		provider.EXPECT().Changes().Return((<-chan models.NetworkProfile)(changes)).Times(1),
	)

	m := NewMonitor(provider, DefaultLimits(), time.Millisecond, logger.Nop())
	assert.False(t, m.Online())
	assert.Equal(t, 5, m.Settings().BatchSize)

	var resumes atomic.Int32
	m.OnResume(func(context.Context) { resumes.Add(1) })

	done := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(done)
	}()

	changes <- online4G()
	require.Eventually(t, func() bool { return resumes.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 20, m.Settings().BatchSize)

	close(changes)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after the provider closed its changes")
	}
	assert.Equal(t, int32(1), resumes.Load())
}

// ── StaticProvider ──────────────────────────────────────────────────────────

func TestStaticProvider_SetNeverBlocks(t *testing.T) {
	p := NewStaticProvider(models.NetworkProfile{})
	for i := 0; i < changesBuffer*3; i++ {
		p.SetOnline(i%2 == 0)
	}
	assert.Len(t, p.Changes(), changesBuffer)
	assert.Equal(t, p.Current(), models.NetworkProfile{Online: false})
}

// ── ProbeProvider ───────────────────────────────────────────────────────────

type fakePinger struct {
	clock *utils.ManualClock
	rtt   time.Duration
	err   error
}

func (f *fakePinger) Ping(context.Context) error {
	f.clock.Advance(f.rtt)
	return f.err
}

func newTestProbe(rtt time.Duration, err error) (*ProbeProvider, *fakePinger) {
	clock := utils.NewManualClock(time.UnixMilli(0))
	pinger := &fakePinger{clock: clock, rtt: rtt, err: err}
	p := NewProbeProvider(pinger, time.Minute, time.Second, false)
	p.clock = clock
	return p, pinger
}

func TestProbeProvider_Classifies(t *testing.T) {
	p, pinger := newTestProbe(300*time.Millisecond, nil)
	assert.False(t, p.Current().Online)

	profile := p.Probe(context.Background())
	assert.True(t, profile.Online)
	assert.Equal(t, models.Class3G, profile.EffectiveClass)
	assert.Equal(t, int64(300), profile.RTTMillis)
	assert.Equal(t, profile, <-p.Changes())

	pinger.rtt = 2500 * time.Millisecond
	profile = p.Probe(context.Background())
	assert.Equal(t, models.ClassSlow2G, profile.EffectiveClass)
	assert.Equal(t, profile, p.Current())
}

func TestProbeProvider_FailureIsOffline(t *testing.T) {
	p, pinger := newTestProbe(10*time.Millisecond, nil)
	p.Probe(context.Background())
	<-p.Changes()

	pinger.err = errors.New("connection refused")
	profile := p.Probe(context.Background())
	assert.False(t, profile.Online)
	assert.Equal(t, models.ClassUnknown, profile.EffectiveClass)
	assert.Equal(t, profile, <-p.Changes())
}

func TestProbeProvider_UnchangedDoesNotEmit(t *testing.T) {
	p, _ := newTestProbe(10*time.Millisecond, nil)
	p.Probe(context.Background())
	p.Probe(context.Background())
	assert.Len(t, p.Changes(), 1)
}

func TestProbeProvider_FullBufferKeepsLatest(t *testing.T) {
	p, pinger := newTestProbe(10*time.Millisecond, nil)

	for i := 0; i < changesBuffer*2; i++ {
		if i%2 == 0 {
			pinger.err = nil
		} else {
			pinger.err = errors.New("connection refused")
		}
		p.Probe(context.Background())
	}
	pinger.err = nil
	last := p.Probe(context.Background())
	require.True(t, last.Online)

	require.Len(t, p.Changes(), changesBuffer)
	var newest models.NetworkProfile
	for len(p.Changes()) > 0 {
		newest = <-p.Changes()
	}
	assert.Equal(t, last, newest)
	assert.True(t, newest.Online)
}

func TestProbeProvider_DrivesMonitor(t *testing.T) {
	p, _ := newTestProbe(10*time.Millisecond, nil)
	m := NewMonitor(p, DefaultLimits(), time.Millisecond, logger.Nop())

	resumed := make(chan struct{}, 1)
	m.OnResume(func(context.Context) { resumed <- struct{}{} })

	stop := startMonitor(t, m)
	defer stop()

	p.Probe(context.Background())
	select {
	case <-resumed:
	case <-time.After(time.Second):
		t.Fatal("resume hook not called")
	}
	assert.Equal(t, models.Class4G, m.Profile().EffectiveClass)
}
