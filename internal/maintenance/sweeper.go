// Package maintenance runs periodic housekeeping: the in-memory cache holds
// expired entries until something touches them, so a sweeper reclaims them
// on a schedule.
package maintenance

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tandemchat/backend/internal/logging"
)

// Purger is the part of the cache the sweeper needs.
type Purger interface {
	PurgeExpired() int
}

// Sweeper periodically purges expired cache entries.
type Sweeper struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
}

// New creates a sweeper that purges every interval.
func New(purger Purger, interval time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
	}
}

// Start begins the sweep schedule in the background.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) sweep() {
	if purged := s.purger.PurgeExpired(); purged > 0 {
		logging.Debug("purged expired cache entries", map[string]interface{}{
			"count": purged,
		})
	}
}
