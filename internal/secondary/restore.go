package secondary

import (
	"fmt"

	"gocv.io/x/gocv"
)

// RestoreIdentities translates a segmentation result from canonical label
// space back into the caller's object identities. Background pixels stay 0.
// The result is freshly allocated; neither input is modified. A canonical
// label absent from the identity map fails with ErrUnmappedCanonicalLabel.
func RestoreIdentities(canonical gocv.Mat, ids IdentityMap) (gocv.Mat, error) {
	rows, cols := canonical.Rows(), canonical.Cols()
	out := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := canonical.GetIntAt(y, x)
			if c == 0 {
				out.SetIntAt(y, x, 0)
				continue
			}
			identity, ok := ids.Identity(c)
			if !ok || identity == 0 {
				out.Close()
				return gocv.NewMat(), fmt.Errorf("restore identities: label %d: %w",
					c, ErrUnmappedCanonicalLabel)
			}
			out.SetIntAt(y, x, identity)
		}
	}

	return out, nil
}
