package secondary

import (
	"fmt"

	"gocv.io/x/gocv"
)

// IdentityMap records, for each canonical label produced by Canonicalize,
// the original object identity that label belongs to. Index 0 is the
// background and always holds 0. Several canonical labels may share one
// identity when an object's seed pixels were split into multiple connected
// components upstream.
type IdentityMap []int32

// Objects returns the number of canonical labels in the map.
func (m IdentityMap) Objects() int {
	if len(m) == 0 {
		return 0
	}
	return len(m) - 1
}

// Identity returns the object identity for a canonical label.
func (m IdentityMap) Identity(canonical int32) (int32, bool) {
	if canonical <= 0 || int(canonical) >= len(m) {
		return 0, false
	}
	return m[canonical], true
}

// checkLabelType rejects seed masks that are not 32-bit signed label masks.
// CV8U is what a thresholding stage emits for binary masks, so it maps to
// the label-type error rather than the depth error.
func checkLabelType(t gocv.MatType) error {
	switch t {
	case gocv.MatTypeCV32S:
		return nil
	case gocv.MatTypeCV8U, gocv.MatTypeCV32F, gocv.MatTypeCV64F:
		return ErrInvalidLabelType
	case gocv.MatTypeCV8S, gocv.MatTypeCV16U, gocv.MatTypeCV16S:
		return ErrUnsupportedLabelDepth
	default:
		return ErrInvalidLabelType
	}
}

// Canonicalize relabels the positive pixels of a seed mask into dense
// connected-component labels 1..K and records which original identity each
// canonical label belongs to. The input mask may use arbitrary positive
// identities, sparse or not; identities whose pixels form several
// components map all of those components back to the same identity.
//
// Two different identities inside one component means the seeds touch and
// cannot be grown apart, so that case fails with ErrAdjacentObjects.
// The caller owns the returned Mat.
func Canonicalize(labels gocv.Mat) (gocv.Mat, IdentityMap, error) {
	if err := checkLabelType(labels.Type()); err != nil {
		return gocv.NewMat(), nil, fmt.Errorf("canonicalize labels: %w", err)
	}

	rows, cols := labels.Rows(), labels.Cols()

	foreground := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	defer foreground.Close()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if labels.GetIntAt(y, x) > 0 {
				foreground.SetUCharAt(y, x, 255)
			} else {
				foreground.SetUCharAt(y, x, 0)
			}
		}
	}

	canonical := gocv.NewMat()
	n := gocv.ConnectedComponents(foreground, &canonical)

	// n counts the background component, so canonical labels are 1..n-1.
	ids := make(IdentityMap, n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := canonical.GetIntAt(y, x)
			if c == 0 {
				continue
			}
			v := labels.GetIntAt(y, x)
			switch {
			case ids[c] == 0:
				ids[c] = v
			case ids[c] != v:
				canonical.Close()
				return gocv.NewMat(), nil, fmt.Errorf(
					"canonicalize labels: component %d covers identities %d and %d: %w",
					c, ids[c], v, ErrAdjacentObjects)
			}
		}
	}

	return canonical, ids, nil
}
