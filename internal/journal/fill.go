package journal

import "math"

// fillRescaleThreshold is the minimum fill/entry deviation that triggers a
// proportional stop/target rescale (spec §4.I).
const fillRescaleThreshold = 0.001

// rescaleToFill adjusts stop/target1/target2 so their percentage distances
// from fill equal the original percentage distances from entry, when fill
// deviates from entry by more than fillRescaleThreshold.
func rescaleToFill(entry, fill, stop, target1, target2 float64) (rsStop, rsTarget1, rsTarget2 float64) {
	if entry == 0 || math.Abs(fill-entry)/entry <= fillRescaleThreshold {
		return stop, target1, target2
	}
	rescale := func(level float64) float64 {
		pctFromEntry := (level - entry) / entry
		return fill * (1 + pctFromEntry)
	}
	return rescale(stop), rescale(target1), rescale(target2)
}
