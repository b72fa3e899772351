/*
scheduler.go - Background schedule recomputation

PURPOSE:
  Periodically recomputes every child's schedule so that presence flips,
  override expiries, and calendar changes are observed without waiting for
  an API request. Results are logged; clients always get a fresh computation
  from GET /schedule, so the scheduler's job is keeping the holiday cache
  warm and surfacing provider failures early.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Recomputes each stored child independently; one failing child does not
    stop the others
  - Provider failures are logged and retried on the next tick

CONFIGURATION:
  - CheckInterval: How often to recompute (default: 15 minutes)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRefreshScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetSchedule endpoint (on-demand computation)
  - engine/engine.go: Manager.Compute
*/
package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coparent/custody-engine/store/sqlite"
)

// RefreshScheduler recomputes schedules in the background.
type RefreshScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefreshScheduler creates a new scheduler.
func NewRefreshScheduler(store *sqlite.Store, handler *Handler) *RefreshScheduler {
	return &RefreshScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *RefreshScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *RefreshScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *RefreshScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.recomputeAll()

	for {
		select {
		case <-rs.ticker.C:
			rs.recomputeAll()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RefreshScheduler) recomputeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), rs.CheckInterval)
	defer cancel()

	children, err := rs.Store.ListChildren(ctx)
	if err != nil {
		log.Printf("[Scheduler] Failed to list children: %v", err)
		return
	}

	now := rs.Handler.Now()
	for _, child := range children {
		// manager() only needs the request context; synthesize one.
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
		if err != nil {
			log.Printf("[Scheduler] Failed to build context request: %v", err)
			return
		}

		m, err := rs.Handler.manager(req, child.ID)
		if err != nil {
			log.Printf("[Scheduler] Skipping child %s: %v", child.ID, err)
			continue
		}
		computation, err := m.Compute(ctx, now)
		if err != nil {
			log.Printf("[Scheduler] Computation failed for child %s: %v", child.ID, err)
			continue
		}
		log.Printf("[Scheduler] Child %s: present=%v period=%s windows=%d",
			child.ID, computation.IsPresent, computation.CurrentPeriod, len(computation.Windows))
	}
}
