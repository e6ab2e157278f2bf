// Package persistence implements spec §4.K: the state store and scheduler
// counters serialize to one JSON file after each cycle; the paper-trading
// journal and its aggregate stats live in a separate file, loaded eagerly
// and saved alongside the state file once per cycle. A third file tracks
// the active signal version, and a fourth is a TTL'd earnings cache. All
// four are flat JSON on disk, written via internal/atomicio so a crash
// mid-write never corrupts the file a restart reads back. Grounded on the
// teacher's persistence/interfaces.go (the Postgres training-data mirror
// lives in internal/journal/postgres.go; this package is the primary
// on-disk store of spec §4.K).
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sawpanic/tradesignal/internal/atomicio"
	"github.com/sawpanic/tradesignal/internal/scheduler"
	"github.com/sawpanic/tradesignal/internal/state"
)

const filePerm = 0o644

// StateCache is the on-disk shape of data/state-cache.json (spec §6).
type StateCache struct {
	SavedAt        time.Time      `json:"savedAt"`
	DailyCallCount int            `json:"dailyCallCount"`
	CycleCount     int            `json:"cycleCount"`
	State          state.Snapshot `json:"state"`
}

// SaveState writes the current snapshot and scheduler counters to path.
func SaveState(path string, snap state.Snapshot, counters scheduler.Counters) error {
	cache := StateCache{
		SavedAt:        time.Now(),
		DailyCallCount: counters.DailyCallCount,
		CycleCount:     counters.CycleCount,
		State:          snap,
	}
	b, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("marshal state cache: %w", err)
	}
	return atomicio.WriteFile(path, b, filePerm)
}

// LoadState reads path and returns the snapshot plus scheduler counters
// reconstructed from it. scheduler.NewGovernor performs the ET-date
// rollover check itself once these counters are handed to it (spec §4.B),
// so LoadState does no date comparison of its own. A missing file returns
// state.Empty(), zero counters and a nil error — first run has nothing to
// restore.
func LoadState(path string) (state.Snapshot, scheduler.Counters, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return state.Empty(), scheduler.Counters{}, nil
	}
	if err != nil {
		return state.Snapshot{}, scheduler.Counters{}, fmt.Errorf("read state cache: %w", err)
	}

	var cache StateCache
	if err := json.Unmarshal(b, &cache); err != nil {
		return state.Snapshot{}, scheduler.Counters{}, fmt.Errorf("unmarshal state cache: %w", err)
	}

	counters := scheduler.Counters{
		CycleCount:     cache.CycleCount,
		DailyCallCount: cache.DailyCallCount,
		LastResetDate:  lastResetDateFrom(cache),
	}
	return cache.State, counters, nil
}

// lastResetDateFrom derives the persisted lastResetDate from SavedAt in ET,
// since StateCache.SavedAt (not a separate field) is what spec §6 persists
// and the governor only needs the ET calendar date to decide whether to
// carry the daily counter forward.
func lastResetDateFrom(cache StateCache) string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return cache.SavedAt.In(loc).Format("2006-01-02")
}
