package secondary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// newGray8 builds a CV8U intensity image filled with a background value.
func newGray8(t *testing.T, rows, cols int, fill uint8) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8U)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetUCharAt(y, x, fill)
		}
	}
	return m
}

// fillPatch paints a square patch of the given value centered at (cy, cx).
func fillPatch(m gocv.Mat, cy, cx, radius int, value uint8) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			m.SetUCharAt(y, x, value)
		}
	}
}

// zeroLabels builds an empty CV32S label mask.
func zeroLabels(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32S)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetIntAt(y, x, 0)
		}
	}
	return m
}

// identityValues collects the set of nonzero values in a CV32S mask.
func identityValues(m gocv.Mat) map[int32]bool {
	out := map[int32]bool{}
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if v := m.GetIntAt(y, x); v != 0 {
				out[v] = true
			}
		}
	}
	return out
}

func TestIdentifyGrowsTwoObjects(t *testing.T) {
	intensity := newGray8(t, 16, 16, 10)
	defer intensity.Close()
	fillPatch(intensity, 4, 4, 1, 200)
	fillPatch(intensity, 11, 11, 1, 200)

	labels := zeroLabels(t, 16, 16)
	defer labels.Close()
	labels.SetIntAt(4, 4, 5)
	labels.SetIntAt(11, 11, 9)

	opts := DefaultOptions()
	result, err := Identify(labels, intensity, opts)
	require.NoError(t, err)
	defer result.Objects.Close()

	// No identities invented, none lost.
	assert.Equal(t, map[int32]bool{5: true, 9: true}, identityValues(result.Objects))

	// Each object covers its bright patch and nothing dark.
	assert.Equal(t, int32(5), result.Objects.GetIntAt(3, 3))
	assert.Equal(t, int32(5), result.Objects.GetIntAt(5, 5))
	assert.Equal(t, int32(9), result.Objects.GetIntAt(10, 10))
	assert.Equal(t, int32(9), result.Objects.GetIntAt(12, 12))
	assert.Equal(t, int32(0), result.Objects.GetIntAt(0, 0))
	assert.Equal(t, int32(0), result.Objects.GetIntAt(8, 8))

	// Seed pixels always keep their identity.
	assert.Equal(t, int32(5), result.Objects.GetIntAt(4, 4))
	assert.Equal(t, int32(9), result.Objects.GetIntAt(11, 11))

	assert.Nil(t, result.Figure)
}

func TestIdentifyIsIndependentOfIdentityOrder(t *testing.T) {
	intensity := newGray8(t, 16, 16, 10)
	defer intensity.Close()
	fillPatch(intensity, 4, 4, 1, 200)
	fillPatch(intensity, 11, 11, 1, 200)

	run := func(first, second int32) gocv.Mat {
		labels := zeroLabels(t, 16, 16)
		defer labels.Close()
		labels.SetIntAt(4, 4, first)
		labels.SetIntAt(11, 11, second)

		result, err := Identify(labels, intensity, DefaultOptions())
		require.NoError(t, err)
		return result.Objects
	}

	a := run(5, 9)
	defer a.Close()
	b := run(9, 5)
	defer b.Close()

	// Same spatial regions; labels follow the seed, not the enumeration.
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			va, vb := a.GetIntAt(y, x), b.GetIntAt(y, x)
			switch va {
			case 0:
				assert.Equal(t, int32(0), vb)
			case 5:
				assert.Equal(t, int32(9), vb)
			case 9:
				assert.Equal(t, int32(5), vb)
			}
		}
	}
}

func TestIdentifyWithStubCollaboratorPreservesIdentities(t *testing.T) {
	intensity := newGray8(t, 8, 8, 50)
	defer intensity.Close()

	labels := zeroLabels(t, 8, 8)
	defer labels.Close()
	labels.SetIntAt(1, 1, 17)
	labels.SetIntAt(6, 6, 3)

	// Collaborator that grows each seed one pixel to the right.
	opts := DefaultOptions()
	opts.Segment = func(intensity, seeds, growthMask gocv.Mat, factors []float64, minT, maxT float64) (gocv.Mat, error) {
		out := seeds.Clone()
		for y := 0; y < seeds.Rows(); y++ {
			for x := 0; x < seeds.Cols()-1; x++ {
				if v := seeds.GetIntAt(y, x); v > 0 {
					out.SetIntAt(y, x+1, v)
				}
			}
		}
		return out, nil
	}

	result, err := Identify(labels, intensity, opts)
	require.NoError(t, err)
	defer result.Objects.Close()

	assert.Equal(t, map[int32]bool{17: true, 3: true}, identityValues(result.Objects))
	assert.Equal(t, int32(17), result.Objects.GetIntAt(1, 1))
	assert.Equal(t, int32(17), result.Objects.GetIntAt(1, 2))
	assert.Equal(t, int32(3), result.Objects.GetIntAt(6, 6))
	assert.Equal(t, int32(3), result.Objects.GetIntAt(6, 7))
}

func TestIdentifyReportsUnmappedCollaboratorLabel(t *testing.T) {
	intensity := newGray8(t, 4, 4, 50)
	defer intensity.Close()

	labels := zeroLabels(t, 4, 4)
	defer labels.Close()
	labels.SetIntAt(1, 1, 6)

	opts := DefaultOptions()
	opts.Segment = func(intensity, seeds, growthMask gocv.Mat, factors []float64, minT, maxT float64) (gocv.Mat, error) {
		out := seeds.Clone()
		out.SetIntAt(0, 0, 99)
		return out, nil
	}

	_, err := Identify(labels, intensity, opts)
	assert.ErrorIs(t, err, ErrUnmappedCanonicalLabel)
}

func TestIdentifyPlotProducesFigure(t *testing.T) {
	intensity := newGray8(t, 8, 8, 10)
	defer intensity.Close()
	fillPatch(intensity, 3, 3, 1, 200)

	labels := zeroLabels(t, 8, 8)
	defer labels.Close()
	labels.SetIntAt(3, 3, 2)

	opts := DefaultOptions()
	opts.Plot = true

	result, err := Identify(labels, intensity, opts)
	require.NoError(t, err)
	defer result.Objects.Close()

	require.NotNil(t, result.Figure)
	assert.Equal(t, 8, result.Figure.Bounds().Dx())
}

func TestIdentifyValidationErrors(t *testing.T) {
	intensity := newGray8(t, 4, 4, 10)
	defer intensity.Close()
	labels := zeroLabels(t, 4, 4)
	defer labels.Close()
	labels.SetIntAt(1, 1, 1)

	t.Run("boolean seed mask", func(t *testing.T) {
		boolMask := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8U)
		defer boolMask.Close()
		_, err := Identify(boolMask, intensity, DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidLabelType)
	})

	t.Run("float intensity image", func(t *testing.T) {
		floatImg := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV64F)
		defer floatImg.Close()
		_, err := Identify(labels, floatImg, DefaultOptions())
		assert.ErrorIs(t, err, ErrUnsupportedPixelType)
	})

	t.Run("unsupported intensity depth", func(t *testing.T) {
		deepImg := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV32S)
		defer deepImg.Close()
		_, err := Identify(labels, deepImg, DefaultOptions())
		assert.ErrorIs(t, err, ErrUnsupportedPixelDepth)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		small := newGray8(t, 2, 2, 10)
		defer small.Close()
		_, err := Identify(labels, small, DefaultOptions())
		assert.Error(t, err)
	})

	t.Run("threshold outside native range", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MinThreshold = 300
		_, err := Identify(labels, intensity, opts)
		assert.Error(t, err)
	})

	t.Run("non-positive correction factor", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CorrectionFactors = []float64{-1}
		_, err := Identify(labels, intensity, opts)
		assert.Error(t, err)
	})

	t.Run("factor count mismatch", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CorrectionFactors = []float64{1, 1, 1}
		_, err := Identify(labels, intensity, opts)
		assert.Error(t, err)
	})
}
