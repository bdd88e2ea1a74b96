// Package measure extracts per-object statistics from a label mask and the
// intensity image it was segmented from.
package measure

import (
	"fmt"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/dkoove/TissueMAPS/pkg/geometry"
)

// ObjectStats summarizes one labeled region.
type ObjectStats struct {
	Identity int32
	Area     int
	Bounds   geometry.RectInt
	Centroid geometry.Point2D

	// Intensity statistics in the image's native range.
	MeanIntensity float64
	StdIntensity  float64
	MaxIntensity  float64
}

// accumulator gathers a region's pixels before the statistics are reduced.
type accumulator struct {
	bounds geometry.RectInt
	sumX   float64
	sumY   float64
	values []float64
}

// Objects computes statistics for every labeled region of labels (CV32S)
// over intensity (CV8U or CV16U). Results are sorted by identity.
func Objects(labels, intensity gocv.Mat) ([]ObjectStats, error) {
	if labels.Type() != gocv.MatTypeCV32S {
		return nil, fmt.Errorf("measure objects: label mask must be CV32S, got %d", labels.Type())
	}
	if t := intensity.Type(); t != gocv.MatTypeCV8U && t != gocv.MatTypeCV16U {
		return nil, fmt.Errorf("measure objects: intensity image must be CV8U or CV16U, got %d", t)
	}
	rows, cols := labels.Rows(), labels.Cols()
	if intensity.Rows() != rows || intensity.Cols() != cols {
		return nil, fmt.Errorf("measure objects: label mask is %dx%d but intensity image is %dx%d",
			cols, rows, intensity.Cols(), intensity.Rows())
	}

	regions := make(map[int32]*accumulator)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			label := labels.GetIntAt(y, x)
			if label <= 0 {
				continue
			}
			acc := regions[label]
			if acc == nil {
				acc = &accumulator{}
				regions[label] = acc
			}
			acc.bounds = acc.bounds.Include(geometry.PointInt{X: x, Y: y})
			acc.sumX += float64(x)
			acc.sumY += float64(y)
			acc.values = append(acc.values, readIntensity(intensity, y, x))
		}
	}

	out := make([]ObjectStats, 0, len(regions))
	for label, acc := range regions {
		n := float64(len(acc.values))
		maxV := 0.0
		for _, v := range acc.values {
			maxV = math.Max(maxV, v)
		}
		// Sample stddev is undefined for a single pixel.
		stdDev := 0.0
		if len(acc.values) > 1 {
			stdDev = stat.StdDev(acc.values, nil)
		}
		out = append(out, ObjectStats{
			Identity:      label,
			Area:          len(acc.values),
			Bounds:        acc.bounds,
			Centroid:      geometry.NewPoint2D(acc.sumX/n, acc.sumY/n),
			MeanIntensity: stat.Mean(acc.values, nil),
			StdIntensity:  stdDev,
			MaxIntensity:  maxV,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })

	return out, nil
}

// readIntensity reads a native-range pixel value from a CV8U or CV16U Mat.
func readIntensity(m gocv.Mat, y, x int) float64 {
	if m.Type() == gocv.MatTypeCV8U {
		return float64(m.GetUCharAt(y, x))
	}
	return float64(uint16(m.GetShortAt(y, x)))
}
