package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/remote"
)

const (
	// settleDelay absorbs the remote store's write lag between a push and
	// the pull that trusts it as the new source of truth.
	settleDelay = 2 * time.Second

	pushTimeout = 15 * time.Second
	pullTimeout = 30 * time.Second
)

// SyncService reconciles the local collections with the remote authoritative
// log. Pushes are fire and forget: failures are logged, never retried, and
// never block or undo local persistence. Pulls replace each local collection
// wholesale, but only when the remote copy of it is non-empty.
type SyncService struct {
	remote   remote.Client
	registry *RegistryService
	scans    database.ScanRecordRepository

	pullInterval time.Duration
	settle       time.Duration

	mu      sync.Mutex
	pending *time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSyncService(rc remote.Client, registry *RegistryService, scans database.ScanRecordRepository, pullInterval time.Duration) *SyncService {
	return &SyncService{
		remote:       rc,
		registry:     registry,
		scans:        scans,
		pullInterval: pullInterval,
		settle:       settleDelay,
		done:         make(chan struct{}),
	}
}

// PushScan sends a finalized record to the remote log without blocking the
// caller.
func (s *SyncService) PushScan(rec domain.ScanRecord) {
	s.push(&remote.Envelope{Action: remote.ActionLogScan, Scan: &rec})
}

func (s *SyncService) PushCheckpoint(cp domain.Checkpoint) {
	s.push(&remote.Envelope{Action: remote.ActionAddCheckpoint, Checkpoint: &cp})
}

func (s *SyncService) PushOfficer(o domain.Officer) {
	s.push(&remote.Envelope{Action: remote.ActionAddOfficer, Officer: &o})
}

func (s *SyncService) PushOfficerRemoval(id string) {
	s.push(&remote.Envelope{Action: remote.ActionRemoveOfficer, OfficerID: id})
}

func (s *SyncService) push(env *remote.Envelope) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := s.remote.Submit(ctx, env); err != nil {
			log.Printf("sync push %s: %v", env.Action, err)
		}
		s.schedulePull()
	}()
}

// schedulePull arms the settle-delay pull that follows every push. A newer
// push supersedes a pull still pending.
func (s *SyncService) schedulePull() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = time.AfterFunc(s.settle, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pullTimeout)
		defer cancel()
		if err := s.Pull(ctx); err != nil {
			log.Printf("sync pull: %v", err)
		}
	})
}

// Pull fetches the remote snapshot and replaces each local collection the
// remote reports as non-empty. An empty remote collection means the remote
// has nothing to say about it yet, never that local data should vanish.
// Per-collection persistence failures are logged and skipped so one bad
// write cannot block the rest of the snapshot.
func (s *SyncService) Pull(ctx context.Context) error {
	snap, err := s.remote.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if len(snap.Checkpoints) > 0 {
		if err := s.registry.ReplaceCheckpoints(ctx, snap.Checkpoints); err != nil {
			log.Printf("sync: replace checkpoints: %v", err)
		}
	}
	if len(snap.Officers) > 0 {
		if err := s.registry.ReplaceOfficers(ctx, snap.Officers); err != nil {
			log.Printf("sync: replace officers: %v", err)
		}
	}
	if len(snap.ScanRecords) > 0 {
		if err := s.scans.ReplaceAll(ctx, snap.ScanRecords); err != nil {
			log.Printf("sync: replace scan records: %v", err)
		}
	}
	return nil
}

// Start pulls once so the caches converge on startup, then keeps pulling on
// the configured interval until Stop. An interval of zero disables the loop
// after the initial pull.
func (s *SyncService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop cancels the loop and any pending settle-delay pull and waits for the
// loop goroutine to exit.
func (s *SyncService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()

	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()

	<-s.done
}

func (s *SyncService) loop(ctx context.Context) {
	defer close(s.done)

	s.pullOnce(ctx)

	if s.pullInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.pullInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pullOnce(ctx)
		}
	}
}

func (s *SyncService) pullOnce(ctx context.Context) {
	pullCtx, cancel := context.WithTimeout(ctx, pullTimeout)
	defer cancel()
	if err := s.Pull(pullCtx); err != nil {
		log.Printf("sync pull: %v", err)
	}
}
