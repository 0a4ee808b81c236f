package sensor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

var (
	ErrTimeout           = errors.New("location reading timed out")
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrDeviceUnavailable = errors.New("location device unavailable")
	ErrSuperseded        = errors.New("superseded by a newer acquisition")
)

const defaultAwaitTimeout = 10 * time.Second

// Fix is a single positioning result reported by a patrol device.
type Fix struct {
	Coordinates domain.Coordinates
	At          time.Time
}

// Source hands out one bounded-wait location reading per request.
type Source interface {
	Await(ctx context.Context, deviceID string) (Fix, error)
}

type result struct {
	fix Fix
	err error
}

type waiter struct {
	ch chan result
}

// Provider matches incoming device fixes to pending acquisitions. At most
// one acquisition is in flight per device: starting a new one fails the
// previous with ErrSuperseded. Fixes that arrive with nobody waiting are
// dropped, so a reading is only ever trusted when it was measured after the
// attempt started.
type Provider struct {
	timeout time.Duration

	mu      sync.Mutex
	waiters map[string]*waiter
}

var _ Source = (*Provider)(nil)

func NewProvider(timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = defaultAwaitTimeout
	}
	return &Provider{
		timeout: timeout,
		waiters: make(map[string]*waiter),
	}
}

// Await blocks until the device reports a fix, the acquisition is superseded,
// ctx is cancelled, or the hard timeout elapses.
func (p *Provider) Await(ctx context.Context, deviceID string) (Fix, error) {
	w := &waiter{ch: make(chan result, 1)}

	p.mu.Lock()
	if prev, ok := p.waiters[deviceID]; ok {
		delete(p.waiters, deviceID)
		prev.ch <- result{err: ErrSuperseded}
	}
	p.waiters[deviceID] = w
	p.mu.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case res := <-w.ch:
		return res.fix, res.err
	case <-timer.C:
		return p.abort(deviceID, w, ErrTimeout)
	case <-ctx.Done():
		return p.abort(deviceID, w, ctx.Err())
	}
}

// abort withdraws w if it is still pending. When a sender resolved the
// waiter first, that result wins over the abort cause.
func (p *Provider) abort(deviceID string, w *waiter, cause error) (Fix, error) {
	p.mu.Lock()
	if cur, ok := p.waiters[deviceID]; ok && cur == w {
		delete(p.waiters, deviceID)
		p.mu.Unlock()
		return Fix{}, cause
	}
	p.mu.Unlock()

	res := <-w.ch
	return res.fix, res.err
}

// Deliver resolves the pending acquisition for deviceID, if any.
func (p *Provider) Deliver(deviceID string, fix Fix) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.waiters[deviceID]; ok {
		delete(p.waiters, deviceID)
		w.ch <- result{fix: fix}
	}
}

// Fail resolves the pending acquisition with a device-reported error.
func (p *Provider) Fail(deviceID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.waiters[deviceID]; ok {
		delete(p.waiters, deviceID)
		w.ch <- result{err: err}
	}
}
