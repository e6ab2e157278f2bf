package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sawpanic/tradesignal/internal/state"
)

// interScoreDelay is the fixed pause between reduced-pipeline calls within
// one scan, independent of Config.CooldownMs (spec §4.H: "inter-call 2s
// spacing").
const interScoreDelay = 2 * time.Second

// Config tunes one Scanner instance (spec §4.H, §6).
type Config struct {
	MinConfidence int
	MaxCandidates int
	Cooldown      time.Duration
}

// ReducedScore is the cheap re-score of one harvested candidate (spec
// §4.H). The orchestrator's implementation fetches a quote and daily OHLC
// and scores technicals only; flow, GEX, dark-pool and short-interest
// readings are not fetched for it.
type ReducedScore func(ctx context.Context, ticker string) (confidence float64, err error)

// Scanner harvests market-wide feeds each cycle and re-scores the top
// candidates through a reduced pipeline, cooldown-gated per ticker.
type Scanner struct {
	cfg   Config
	delay time.Duration

	mu       sync.Mutex
	lastScan map[string]time.Time
}

// New builds a Scanner from cfg.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg, delay: interScoreDelay, lastScan: make(map[string]time.Time)}
}

// Run harvests candidates from snap, re-scores the top Config.MaxCandidates
// by weighted harvest count through score, and returns the discoveries that
// clear Config.MinConfidence. Tickers re-scanned within Config.Cooldown are
// skipped entirely.
func (s *Scanner) Run(ctx context.Context, snap state.Snapshot, watchlist []string, score ReducedScore, now time.Time) []state.ScannerDiscovery {
	harvested := Harvest(snap, watchlist)
	candidates := s.selectCandidates(harvested, now)

	var out []state.ScannerDiscovery
	for i, ticker := range candidates {
		if i > 0 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return out
			}
		}

		confidence, err := score(ctx, ticker)
		s.markScanned(ticker, now)
		if err != nil || confidence < float64(s.cfg.MinConfidence) {
			continue
		}

		out = append(out, state.ScannerDiscovery{
			Ticker:     ticker,
			Confidence: confidence,
			ScoredAt:   now,
		})
	}
	return out
}

// selectCandidates ranks harvested tickers by weighted count descending,
// drops any still inside their per-ticker cooldown, and truncates to
// Config.MaxCandidates.
func (s *Scanner) selectCandidates(harvested map[string]float64, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		ticker string
		weight float64
	}
	ranked := make([]scored, 0, len(harvested))
	for ticker, weight := range harvested {
		if last, seen := s.lastScan[ticker]; seen && now.Sub(last) < s.cfg.Cooldown {
			continue
		}
		ranked = append(ranked, scored{ticker, weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].ticker < ranked[j].ticker
	})

	max := s.cfg.MaxCandidates
	if max <= 0 || max > len(ranked) {
		max = len(ranked)
	}
	out := make([]string, max)
	for i := 0; i < max; i++ {
		out[i] = ranked[i].ticker
	}
	return out
}

func (s *Scanner) markScanned(ticker string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScan[ticker] = now
}
