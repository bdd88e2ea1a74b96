package secondary

import "errors"

// Validation and invariant errors. All input validation errors are reported
// before any processing starts; ErrAdjacentObjects and
// ErrUnmappedCanonicalLabel indicate a broken input mask or a broken
// segmentation collaborator respectively.
var (
	// ErrUnsupportedPixelType reports an intensity image that is not a
	// single-channel unsigned integer image (e.g. float or color input).
	ErrUnsupportedPixelType = errors.New("intensity image must be a single-channel unsigned integer image")

	// ErrUnsupportedPixelDepth reports an integer intensity image whose
	// depth is neither 8-bit nor 16-bit unsigned.
	ErrUnsupportedPixelDepth = errors.New("intensity image must be 8-bit or 16-bit unsigned")

	// ErrInvalidLabelType reports a seed mask that is binary or float
	// valued rather than an integer label mask.
	ErrInvalidLabelType = errors.New("label image must be an integer label mask, not a binary or float mask")

	// ErrUnsupportedLabelDepth reports an integer seed mask that is not
	// the 32-bit signed representation produced by the labeling stage.
	ErrUnsupportedLabelDepth = errors.New("label image must be a 32-bit signed integer mask")

	// ErrAdjacentObjects reports two distinct object identities whose
	// seed pixels touch: they collapse into one connected component, so
	// growing them would silently merge the objects.
	ErrAdjacentObjects = errors.New("seed regions of distinct objects are adjacent")

	// ErrUnmappedCanonicalLabel reports a segmentation output label that
	// canonicalization never produced.
	ErrUnmappedCanonicalLabel = errors.New("segmentation output contains an unknown label")
)
