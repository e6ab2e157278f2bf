package journal

import "github.com/sawpanic/tradesignal/internal/model"

// TrainingExample is one labeled feature vector derived from a closed trade.
type TrainingExample struct {
	Ticker   string
	Features [model.FeatureVectorSize]float64
	Label    int // 1 for WIN_*, 0 for LOSS_*
}

// GetTrainingData returns one TrainingExample per closed-and-decided trade
// that carries a feature vector, excluding EXPIRED trades entirely (spec §4.I).
func (j *Journal) GetTrainingData() []TrainingExample {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []TrainingExample
	for _, tr := range j.trades {
		if !tr.Status.Closed() || tr.Status == model.Expired || tr.Features == nil {
			continue
		}
		label := 0
		switch tr.Status {
		case model.WinT1, model.WinT2, model.WinEod:
			label = 1
		}
		out = append(out, TrainingExample{
			Ticker:   tr.Ticker,
			Features: *tr.Features,
			Label:    label,
		})
	}
	return out
}
