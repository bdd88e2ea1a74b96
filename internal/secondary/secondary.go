// Package secondary identifies secondary object regions (e.g. cell bodies)
// in a grayscale intensity image by growing them outward from previously
// identified primary seed objects (e.g. nuclei).
//
// The package is the orchestration layer of the stage: it normalizes
// intensity and threshold units, canonicalizes the caller's seed labels
// into the dense label space the region-growing collaborator requires, and
// translates the grown result back into the caller's object identities.
// The growing algorithm itself is a collaborator behind SegmentFunc.
package secondary

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/dkoove/TissueMAPS/internal/plotting"
	"github.com/dkoove/TissueMAPS/internal/watershed"
)

// maxThreshold caps the computed threshold level at the top of the
// normalized intensity range, independent of pixel depth.
const maxThreshold = 1.0

// SegmentFunc is the region-growing collaborator. It receives the
// normalized intensity image (CV64F, values in [0,1]), dense canonical seed
// labels (CV32S, 1..K), a growth mask in the same label space whose nonzero
// pixels belong to their region unconditionally, correction factors (one
// per image or one per region) and threshold bounds in normalized units.
// It returns a freshly allocated CV32S mask in the same canonical space.
type SegmentFunc func(intensity, seeds, growthMask gocv.Mat, factors []float64, minThreshold, maxThreshold float64) (gocv.Mat, error)

// Options configures Identify.
type Options struct {
	// CorrectionFactors scale each region's computed threshold level. A
	// single value applies to every object; otherwise one value per seed
	// region is required. Factors above 1 make growth stop earlier.
	CorrectionFactors []float64

	// MinThreshold is the lowest threshold level growth may relax to,
	// expressed in the intensity image's native range.
	MinThreshold int

	// Plot requests a rendered figure alongside the output mask.
	Plot bool

	// Segment overrides the region-growing implementation. Nil selects
	// the built-in watershed expansion.
	Segment SegmentFunc
}

// DefaultOptions returns options with a neutral correction factor.
func DefaultOptions() Options {
	return Options{CorrectionFactors: []float64{1.0}}
}

// Result holds the output of one invocation.
type Result struct {
	// Objects labels each grown region with the identity of the seed
	// object it grew from (CV32S). The caller owns the Mat.
	Objects gocv.Mat

	// Figure is set only when Options.Plot was requested.
	Figure *image.RGBA
}

// Identify grows secondary objects from the seed regions of labelImage over
// intensityImage and returns a label mask carrying the caller's original
// object identities. labelImage must be CV32S with positive identities and
// 0 background; intensityImage must be CV8U or CV16U of the same size.
//
// All validation happens before any pixel is touched; inputs are never
// modified.
func Identify(labelImage, intensityImage gocv.Mat, opts Options) (Result, error) {
	if len(opts.CorrectionFactors) == 0 {
		opts.CorrectionFactors = []float64{1.0}
	}

	if err := validate(labelImage, intensityImage, opts); err != nil {
		return Result{}, err
	}

	normalized, minT, err := NormalizeIntensity(intensityImage, opts.MinThreshold)
	if err != nil {
		return Result{}, err
	}
	defer normalized.Close()

	canonical, ids, err := Canonicalize(labelImage)
	if err != nil {
		return Result{}, err
	}
	defer canonical.Close()

	if n := len(opts.CorrectionFactors); n != 1 && n != ids.Objects() {
		return Result{}, fmt.Errorf("identify secondary: %d correction factors for %d seed regions",
			n, ids.Objects())
	}

	segment := opts.Segment
	if segment == nil {
		segment = watershed.Expand
	}

	// The seed mask doubles as the mask of interest: seed pixels are part
	// of their object regardless of intensity.
	grown, err := segment(normalized, canonical, canonical, opts.CorrectionFactors, minT, maxThreshold)
	if err != nil {
		return Result{}, fmt.Errorf("identify secondary: %w", err)
	}
	defer grown.Close()

	objects, err := RestoreIdentities(grown, ids)
	if err != nil {
		return Result{}, err
	}

	res := Result{Objects: objects}
	if opts.Plot {
		res.Figure = plotting.Figure(intensityImage, objects, plotting.DefaultMaxWidth)
	}
	return res, nil
}

// validate performs every entry-boundary check so failures happen before
// any processing begins.
func validate(labelImage, intensityImage gocv.Mat, opts Options) error {
	if err := checkLabelType(labelImage.Type()); err != nil {
		return fmt.Errorf("identify secondary: %w", err)
	}
	depth, err := nativeDepth(intensityImage.Type())
	if err != nil {
		return fmt.Errorf("identify secondary: %w", err)
	}
	if labelImage.Rows() != intensityImage.Rows() || labelImage.Cols() != intensityImage.Cols() {
		return fmt.Errorf("identify secondary: label image is %dx%d but intensity image is %dx%d",
			labelImage.Cols(), labelImage.Rows(), intensityImage.Cols(), intensityImage.Rows())
	}
	if opts.MinThreshold < 0 || float64(opts.MinThreshold) >= depth {
		return fmt.Errorf("identify secondary: minimum threshold %d outside native range [0, %d)",
			opts.MinThreshold, int(depth))
	}
	for _, f := range opts.CorrectionFactors {
		if f <= 0 {
			return fmt.Errorf("identify secondary: correction factor %v must be positive", f)
		}
	}
	return nil
}
