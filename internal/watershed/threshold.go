package watershed

import (
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// histBins is the histogram resolution used for the threshold model. The
// intensity image is already normalized to [0,1], so a fixed bin count
// works for both source depths.
const histBins = 256

// histogram bins a CV64F intensity image into histBins equal-width bins
// over [0,1].
func histogram(intensity gocv.Mat) []float64 {
	hist := make([]float64, histBins)
	rows, cols := intensity.Rows(), intensity.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := intensity.GetDoubleAt(y, x)
			bin := int(v * histBins)
			if bin < 0 {
				bin = 0
			}
			if bin >= histBins {
				bin = histBins - 1
			}
			hist[bin]++
		}
	}
	return hist
}

// binEdges returns the lower edge of each bin in normalized units. The
// lower edge never exceeds the value of any pixel binned there.
func binEdges() []float64 {
	edges := make([]float64, histBins)
	for i := range edges {
		edges[i] = float64(i) / histBins
	}
	return edges
}

// otsuLevel returns the threshold level (normalized units) that maximizes
// the between-class variance of the histogram.
// https://en.wikipedia.org/wiki/Otsu%27s_method
// Returns false when the histogram is degenerate (all mass in one bin), in
// which case no split separates foreground from background.
func otsuLevel(hist []float64) (float64, bool) {
	var total, totalWeightedSum float64
	for bin, count := range hist {
		total += count
		totalWeightedSum += float64(bin) * count
	}

	var (
		bestBin      = -1
		bestVariance float64

		lowCount       float64
		lowWeightedSum float64
	)
	for bin, count := range hist {
		lowCount += count
		lowWeightedSum += float64(bin) * count

		highCount := total - lowCount
		highWeightedSum := totalWeightedSum - lowWeightedSum

		if lowCount == 0 || highCount == 0 {
			continue
		}

		lowMean := lowWeightedSum / lowCount
		highMean := highWeightedSum / highCount

		diff := lowMean - highMean
		variance := lowCount * highCount * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestBin = bin
		}
	}

	if bestBin < 0 {
		return 0, false
	}
	// The split sits at the upper edge of the best bin.
	return float64(bestBin+1) / histBins, true
}

// baseLevel computes the image-wide threshold level the per-region levels
// are derived from. Otsu's split is used when the histogram supports one.
// Otsu has no split only when a single bin holds all the mass; the weighted
// mean of the bin edges is then that bin's lower edge, which admits the
// uniform image's pixels instead of cutting all growth off.
func baseLevel(intensity gocv.Mat) float64 {
	hist := histogram(intensity)
	if level, ok := otsuLevel(hist); ok {
		return level
	}
	return stat.Mean(binEdges(), hist)
}

// regionLevels derives the threshold level for each of the k seed regions:
// the base level scaled by the region's correction factor, clamped to
// [minThreshold, maxThreshold]. factors holds either a single image-wide
// value or one value per region. Index 0 is unused.
func regionLevels(intensity gocv.Mat, k int, factors []float64, minThreshold, maxThreshold float64) []float64 {
	base := baseLevel(intensity)

	levels := make([]float64, k+1)
	for i := 1; i <= k; i++ {
		f := factors[0]
		if len(factors) > 1 {
			f = factors[i-1]
		}
		level := base * f
		if level < minThreshold {
			level = minThreshold
		}
		if level > maxThreshold {
			level = maxThreshold
		}
		levels[i] = level
	}
	return levels
}
