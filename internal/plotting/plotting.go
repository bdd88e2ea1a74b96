// Package plotting renders inspection figures for segmentation results.
// It is presentation glue only: the segmentation pipeline never depends on
// anything here beyond the returned image.
package plotting

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/dkoove/TissueMAPS/pkg/colorutil"
)

// DefaultMaxWidth bounds the rendered panel width; larger images are
// downsampled by an integer stride.
const DefaultMaxWidth = 512

// panelGap is the number of blank rows between the two panels.
const panelGap = 4

// Figure renders two stacked panels: the intensity image as a heatmap on
// top and the label mask, colored per object over a dimmed copy of the
// intensity, below. Returns nil when the inputs are not a supported
// intensity/label pair; rendering problems never affect the pipeline.
func Figure(intensity, labels gocv.Mat, maxWidth int) *image.RGBA {
	depth, ok := intensityDepth(intensity.Type())
	if !ok || labels.Type() != gocv.MatTypeCV32S {
		return nil
	}
	rows, cols := intensity.Rows(), intensity.Cols()
	if rows == 0 || cols == 0 || labels.Rows() != rows || labels.Cols() != cols {
		return nil
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	stride := (cols + maxWidth - 1) / maxWidth
	if stride < 1 {
		stride = 1
	}
	w := (cols + stride - 1) / stride
	h := (rows + stride - 1) / stride

	fig := image.NewRGBA(image.Rect(0, 0, w, 2*h+panelGap))

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			y, x := py*stride, px*stride
			v := readIntensity(intensity, y, x) / depth

			// Top panel: intensity heatmap.
			fig.SetRGBA(px, py, colorutil.Heat(v))

			// Bottom panel: labels over dimmed intensity.
			label := labels.GetIntAt(y, x)
			if label > 0 {
				fig.SetRGBA(px, h+panelGap+py, colorutil.LabelColor(label))
			} else {
				g := uint8(v * 0.4 * 255)
				fig.SetRGBA(px, h+panelGap+py, color.RGBA{R: g, G: g, B: g, A: 255})
			}
		}
	}

	return fig
}

// intensityDepth mirrors the pixel depths the pipeline accepts.
func intensityDepth(t gocv.MatType) (float64, bool) {
	switch t {
	case gocv.MatTypeCV8U:
		return 256, true
	case gocv.MatTypeCV16U:
		return 65536, true
	default:
		return 0, false
	}
}

// readIntensity reads a native-range pixel value from a CV8U or CV16U Mat.
func readIntensity(m gocv.Mat, y, x int) float64 {
	if m.Type() == gocv.MatTypeCV8U {
		return float64(m.GetUCharAt(y, x))
	}
	return float64(uint16(m.GetShortAt(y, x)))
}
