package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/kpetrov-dev/anistream/internal/importer"
)

// Manager triggers scheduled catalog syncs, replacing the pg_cron setup a
// hosted deployment would use.
type Manager struct {
	orch     *importer.Orchestrator
	interval time.Duration
	ticker   *time.Ticker
	quit     chan struct{}
}

func NewManager(orch *importer.Orchestrator, interval time.Duration) *Manager {
	return &Manager{
		orch:     orch,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

func (m *Manager) Start() {
	if m.interval <= 0 {
		log.Println("Scheduler disabled")
		return
	}
	log.Println("Scheduler started...")
	m.ticker = time.NewTicker(m.interval)
	go func() {
		for {
			select {
			case <-m.ticker.C:
				m.Sync()
			case <-m.quit:
				m.ticker.Stop()
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.quit)
	log.Println("Scheduler stopped.")
}

// Sync runs one scheduled import pass over all configured sources.
func (m *Manager) Sync() {
	log.Println("Scheduler: starting catalog sync...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary := m.orch.Run(ctx, importer.Options{Trigger: "scheduled"})
	log.Printf("Scheduler: sync finished: %s", summary.Message)
}
