package alerts

import (
	"sync"
	"time"
)

// cooldownWindow is the per-(ticker,type) suppression window (spec §4.G).
const cooldownWindow = 30 * time.Minute

// Cooldown gates repeated alerts of the same (ticker, type) within
// cooldownWindow. Safe for concurrent use; the orchestrator's alert
// evaluation step is the sole caller.
type Cooldown struct {
	mu       sync.Mutex
	lastFire map[string]time.Time
}

// NewCooldown builds an empty cooldown tracker.
func NewCooldown() *Cooldown {
	return &Cooldown{lastFire: make(map[string]time.Time)}
}

func key(ticker, alertType string) string {
	return ticker + "|" + alertType
}

// Allow reports whether (ticker, alertType) may fire at now, and if so,
// records the firing so the next call within the window is suppressed.
func (c *Cooldown) Allow(ticker, alertType string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(ticker, alertType)
	last, seen := c.lastFire[k]
	if seen && now.Sub(last) < cooldownWindow {
		return false
	}
	c.lastFire[k] = now
	return true
}
