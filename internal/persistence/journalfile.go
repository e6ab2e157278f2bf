package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sawpanic/tradesignal/internal/atomicio"
	"github.com/sawpanic/tradesignal/internal/journal"
	"github.com/sawpanic/tradesignal/internal/model"
)

// JournalFile is the on-disk shape of data/trade-journal.json (spec §6):
// `{trades:[…], stats:{…}}`.
type JournalFile struct {
	Trades []model.PaperTrade `json:"trades"`
	Stats  journal.Stats      `json:"stats"`
}

// SaveJournal writes j's full trade list and current aggregate stats to
// path. `tradesignal run` calls it once after every cycle, together with
// SaveState, and again at shutdown. Opens, outcome checks and EOD sweeps
// inside a cycle are not saved one by one, so a crash mid-cycle loses that
// cycle's journal changes.
func SaveJournal(path string, j *journal.Journal) error {
	file := JournalFile{Trades: j.Trades(), Stats: j.Stats()}
	b, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	return atomicio.WriteFile(path, b, filePerm)
}

// LoadJournal reads path and returns the persisted trade list, ready to
// hand to journal.Journal.Restore. A missing file returns an empty list
// and a nil error.
func LoadJournal(path string) ([]model.PaperTrade, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var file JournalFile
	if err := json.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("unmarshal journal: %w", err)
	}
	return file.Trades, nil
}
