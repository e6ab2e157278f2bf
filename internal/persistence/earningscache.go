package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sawpanic/tradesignal/internal/atomicio"
)

// EarningsTTL is the staleness window for a cached earnings entry (spec §6
// "6-hour TTL").
const EarningsTTL = 6 * time.Hour

// EarningsEntry is one ticker's cached next-earnings lookup.
type EarningsEntry struct {
	NextEarnings time.Time `json:"nextEarnings"`
	DaysUntil    int       `json:"daysUntil"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// Stale reports whether entry is older than EarningsTTL as of now.
func (e EarningsEntry) Stale(now time.Time) bool {
	return now.Sub(e.FetchedAt) >= EarningsTTL
}

// EarningsCacheFile is the on-disk shape of data/earnings-cache.json (spec
// §6): `{lastUpdated, entries:{ticker:{nextEarnings, daysUntil, fetchedAt}}}`.
type EarningsCacheFile struct {
	LastUpdated time.Time                `json:"lastUpdated"`
	Entries     map[string]EarningsEntry `json:"entries"`
}

// EarningsCache is an in-memory mirror of the earnings cache file, read
// once at startup and written back whenever a ticker's entry is refreshed.
// Grounded on the teacher's provider/runtime/cache_config.go TTL-cache
// shape, generalized from its per-request cache-control headers to a
// flat-file-backed per-ticker map.
type EarningsCache struct {
	path    string
	entries map[string]EarningsEntry
}

// LoadEarningsCache reads path into a new EarningsCache. A missing file
// starts empty rather than erroring — first run has nothing cached.
func LoadEarningsCache(path string) (*EarningsCache, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &EarningsCache{path: path, entries: map[string]EarningsEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read earnings cache: %w", err)
	}

	var file EarningsCacheFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("unmarshal earnings cache: %w", err)
	}
	if file.Entries == nil {
		file.Entries = map[string]EarningsEntry{}
	}
	return &EarningsCache{path: path, entries: file.Entries}, nil
}

// Get returns ticker's cached entry and whether it is present and fresh as
// of now.
func (c *EarningsCache) Get(ticker string, now time.Time) (EarningsEntry, bool) {
	e, ok := c.entries[ticker]
	if !ok || e.Stale(now) {
		return EarningsEntry{}, false
	}
	return e, true
}

// Put records a freshly fetched entry and persists the whole cache.
func (c *EarningsCache) Put(ticker string, entry EarningsEntry) error {
	c.entries[ticker] = entry
	return c.save()
}

func (c *EarningsCache) save() error {
	file := EarningsCacheFile{LastUpdated: time.Now(), Entries: c.entries}
	b, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal earnings cache: %w", err)
	}
	return atomicio.WriteFile(c.path, b, filePerm)
}
