// Package watershed implements threshold-driven region growing: seed
// regions expand outward into progressively dimmer pixels of an intensity
// image until each region's threshold level cuts the growth off.
package watershed

import (
	"container/heap"
	"fmt"

	"gocv.io/x/gocv"
)

// frontier is a max-heap of candidate pixels ordered by intensity, so the
// brightest frontier pixel is always grown next. Ties break on the flat
// pixel index to keep the expansion deterministic.
type frontier struct {
	ids       []int
	intensity []float64
}

func (f frontier) Len() int { return len(f.ids) }

func (f frontier) Less(i, j int) bool {
	if f.intensity[i] != f.intensity[j] {
		return f.intensity[i] > f.intensity[j]
	}
	return f.ids[i] < f.ids[j]
}

func (f frontier) Swap(i, j int) {
	f.ids[i], f.ids[j] = f.ids[j], f.ids[i]
	f.intensity[i], f.intensity[j] = f.intensity[j], f.intensity[i]
}

func (f *frontier) Push(x any) {
	p := x.(pixel)
	f.ids = append(f.ids, p.id)
	f.intensity = append(f.intensity, p.intensity)
}

func (f *frontier) Pop() any {
	n := f.Len() - 1
	p := pixel{id: f.ids[n], intensity: f.intensity[n]}
	f.ids = f.ids[:n]
	f.intensity = f.intensity[:n]
	return p
}

type pixel struct {
	id        int
	intensity float64
}

// Expand grows each seed region of seeds outward over the intensity image
// and returns the expanded label mask in the same label space.
//
// intensity must be CV64F with values in [0,1]; seeds and growthMask must
// be CV32S with dense labels 1..K. A threshold level is computed per region
// from the image histogram, scaled by the region's correction factor
// (either one image-wide factor or one per region) and clamped to
// [minThreshold, maxThreshold]. Expansion pops the brightest frontier pixel
// first and admits 4-connected neighbors whose intensity is at or above the
// claiming region's level, which is equivalent to relaxing a global
// threshold stepwise from maxThreshold down to each region's level.
//
// Nonzero growthMask pixels belong to their region unconditionally. A pixel
// is claimed by the first region to reach it and never reassigned, so
// competing regions partition the space between them along the dimmest
// pixels. Inputs are never modified; the caller owns the returned Mat.
func Expand(intensity, seeds, growthMask gocv.Mat, factors []float64, minThreshold, maxThreshold float64) (gocv.Mat, error) {
	if intensity.Type() != gocv.MatTypeCV64F {
		return gocv.NewMat(), fmt.Errorf("expand: intensity image must be CV64F, got %d", intensity.Type())
	}
	if seeds.Type() != gocv.MatTypeCV32S || growthMask.Type() != gocv.MatTypeCV32S {
		return gocv.NewMat(), fmt.Errorf("expand: seed and growth masks must be CV32S")
	}
	rows, cols := intensity.Rows(), intensity.Cols()
	if seeds.Rows() != rows || seeds.Cols() != cols ||
		growthMask.Rows() != rows || growthMask.Cols() != cols {
		return gocv.NewMat(), fmt.Errorf("expand: image and mask dimensions differ")
	}
	if minThreshold > maxThreshold {
		return gocv.NewMat(), fmt.Errorf("expand: minimum threshold %v above maximum %v", minThreshold, maxThreshold)
	}

	out := seeds.Clone()

	// Growth mask pixels are part of their region regardless of intensity.
	k := 0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if m := growthMask.GetIntAt(y, x); m > 0 && out.GetIntAt(y, x) == 0 {
				out.SetIntAt(y, x, m)
			}
			if label := out.GetIntAt(y, x); int(label) > k {
				k = int(label)
			}
		}
	}
	if k == 0 {
		return out, nil
	}

	if n := len(factors); n != 1 && n != k {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("expand: %d correction factors for %d regions", n, k)
	}
	for _, f := range factors {
		if f <= 0 {
			out.Close()
			return gocv.NewMat(), fmt.Errorf("expand: correction factor %v must be positive", f)
		}
	}

	levels := regionLevels(intensity, k, factors, minThreshold, maxThreshold)

	q := &frontier{}
	heap.Init(q)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if out.GetIntAt(y, x) > 0 {
				heap.Push(q, pixel{id: y*cols + x, intensity: intensity.GetDoubleAt(y, x)})
			}
		}
	}

	for q.Len() > 0 {
		p := heap.Pop(q).(pixel)
		y, x := p.id/cols, p.id%cols
		label := out.GetIntAt(y, x)

		for _, d := range [4][2]int{{0, -1}, {-1, 0}, {0, 1}, {1, 0}} {
			ny, nx := y+d[0], x+d[1]
			if ny < 0 || ny >= rows || nx < 0 || nx >= cols {
				continue
			}
			if out.GetIntAt(ny, nx) != 0 {
				continue
			}
			v := intensity.GetDoubleAt(ny, nx)
			if v < levels[label] {
				continue
			}
			out.SetIntAt(ny, nx, label)
			heap.Push(q, pixel{id: ny*cols + nx, intensity: v})
		}
	}

	return out, nil
}
