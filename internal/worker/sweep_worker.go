package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrbailey528/solanasign/internal/repository"
	"github.com/jrbailey528/solanasign/internal/service"
	"github.com/jrbailey528/solanasign/pkg/logger"
)

// SweepWorkerConfig contains configuration for the sweep worker
type SweepWorkerConfig struct {
	// ScanInterval is the interval between maintenance scans
	ScanInterval time.Duration
	// BatchSize is the number of rows to process in each scan
	BatchSize int
	// PendingTTL is how long a ticket may sit in pending before its mint
	// is considered lost and its inventory slot is restored
	PendingTTL time.Duration
}

// DefaultSweepWorkerConfig returns default configuration
func DefaultSweepWorkerConfig() *SweepWorkerConfig {
	return &SweepWorkerConfig{
		ScanInterval: 30 * time.Second,
		BatchSize:    100,
		PendingTTL:   5 * time.Minute,
	}
}

// SweepWorker runs the marketplace maintenance loops: expiring overdue
// resale listings and reaping pending tickets whose mint never completed.
// The reaper is the recovery path for crashes between the inventory claim
// and the compensating transaction.
type SweepWorker struct {
	listingService service.ListingService
	ticketRepo     repository.TicketRepository
	config         *SweepWorkerConfig
	log            *logger.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool

	// Stats
	totalExpired int64
	totalReaped  int64
	lastScanTime time.Time
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(
	listingService service.ListingService,
	ticketRepo repository.TicketRepository,
	config *SweepWorkerConfig,
) *SweepWorker {
	if config == nil {
		config = DefaultSweepWorkerConfig()
	}

	return &SweepWorker{
		listingService: listingService,
		ticketRepo:     ticketRepo,
		config:         config,
		log:            logger.Get(),
		stopCh:         make(chan struct{}),
	}
}

// Start starts the sweep worker
func (w *SweepWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("sweep worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting sweep worker")

	w.wg.Add(1)
	go w.scan(ctx)

	return nil
}

// Stop stops the sweep worker
func (w *SweepWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping sweep worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Sweep worker stopped")
}

// scan periodically runs both maintenance passes
func (w *SweepWorker) scan(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce performs one maintenance pass
func (w *SweepWorker) runOnce(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	expired, err := w.listingService.SweepExpiredListings(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to sweep expired listings: %v", err))
	} else if expired > 0 {
		w.mu.Lock()
		w.totalExpired += int64(expired)
		w.mu.Unlock()
		w.log.Info(fmt.Sprintf("Expired %d overdue listings", expired))
	}

	cutoff := time.Now().Add(-w.config.PendingTTL)
	reaped, err := w.ticketRepo.ReapStalePending(ctx, cutoff, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to reap stale pending tickets: %v", err))
	} else if reaped > 0 {
		w.mu.Lock()
		w.totalReaped += int64(reaped)
		w.mu.Unlock()
		w.log.Info(fmt.Sprintf("Reaped %d stale pending tickets, inventory restored", reaped))
	}
}

// GetStats returns worker statistics
func (w *SweepWorker) GetStats() *SweepWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &SweepWorkerStats{
		IsRunning:    w.running,
		TotalExpired: w.totalExpired,
		TotalReaped:  w.totalReaped,
		LastScanTime: w.lastScanTime,
	}
}

// SweepWorkerStats contains worker statistics
type SweepWorkerStats struct {
	IsRunning    bool      `json:"is_running"`
	TotalExpired int64     `json:"total_expired"`
	TotalReaped  int64     `json:"total_reaped"`
	LastScanTime time.Time `json:"last_scan_time"`
}
