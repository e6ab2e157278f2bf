package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists a Result to disk: one JSONL line per window plus a
// markdown summary, mirroring the teacher's smoke90.Writer layout
// (results.jsonl + a report file) generalized from its dated subdirectory
// convention to one flat output directory per run.
type Writer struct {
	outputDir string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// WriteResults writes every window as one JSON line to results.jsonl.
func (w *Writer) WriteResults(result *Result) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, "results.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, window := range result.Windows {
		if err := enc.Encode(window); err != nil {
			return fmt.Errorf("encode window: %w", err)
		}
	}
	return nil
}

// WriteReport writes a short markdown summary alongside results.jsonl.
func (w *Writer) WriteReport(result *Result) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.outputDir, "report.md")
	m := result.Metrics
	body := fmt.Sprintf(`# Replay report

Window: %s -> %s
Windows evaluated: %d
Candidates scored: %d
Trades opened: %d, closed: %d
Win rate: %.1f%% (%d W / %d L)
Total P&L: %.2f
`,
		result.StartTime.Format("2006-01-02"), result.EndTime.Format("2006-01-02"),
		m.TotalWindows, m.TotalCandidates, m.OpenedTrades, m.ClosedTrades,
		m.WinRate*100, m.Wins, m.Losses, m.TotalPnL)

	return os.WriteFile(path, []byte(body), 0o644)
}
