package secondary

import (
	"fmt"

	"gocv.io/x/gocv"
)

// nativeDepth returns the normalization divisor for a supported intensity
// Mat type: 256 for CV8U, 65536 for CV16U.
func nativeDepth(t gocv.MatType) (float64, error) {
	switch t {
	case gocv.MatTypeCV8U:
		return 256, nil
	case gocv.MatTypeCV16U:
		return 65536, nil
	case gocv.MatTypeCV8S, gocv.MatTypeCV16S, gocv.MatTypeCV32S:
		return 0, ErrUnsupportedPixelDepth
	default:
		// Float, bool-style and multi-channel types all land here.
		return 0, ErrUnsupportedPixelType
	}
}

// NormalizeIntensity rescales an 8-bit or 16-bit unsigned intensity image
// into a CV64F image with values in [0,1), dividing by 2^depth, and rescales
// minThreshold from the image's native range into the same units. The input
// is not modified; the caller owns the returned Mat.
func NormalizeIntensity(img gocv.Mat, minThreshold int) (gocv.Mat, float64, error) {
	depth, err := nativeDepth(img.Type())
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("normalize intensity: %w", err)
	}
	if minThreshold < 0 || float64(minThreshold) >= depth {
		return gocv.NewMat(), 0, fmt.Errorf(
			"normalize intensity: minimum threshold %d outside native range [0, %d)",
			minThreshold, int(depth))
	}

	// 1/256 and 1/65536 are powers of two, so the scale is exact in float32.
	normalized := gocv.NewMat()
	img.ConvertToWithParams(&normalized, gocv.MatTypeCV64F, float32(1/depth), 0)

	return normalized, float64(minThreshold) / depth, nil
}
