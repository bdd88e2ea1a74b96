package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dkoove/TissueMAPS/pkg/geometry"
)

func newLabels(t *testing.T, data [][]int32) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(len(data), len(data[0]), gocv.MatTypeCV32S)
	for y, row := range data {
		for x, v := range row {
			m.SetIntAt(y, x, v)
		}
	}
	return m
}

func newGray8(t *testing.T, data [][]uint8) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(len(data), len(data[0]), gocv.MatTypeCV8U)
	for y, row := range data {
		for x, v := range row {
			m.SetUCharAt(y, x, v)
		}
	}
	return m
}

func TestObjectsStatistics(t *testing.T) {
	labels := newLabels(t, [][]int32{
		{5, 5, 0, 0},
		{5, 5, 0, 9},
		{0, 0, 0, 0},
	})
	defer labels.Close()

	intensity := newGray8(t, [][]uint8{
		{10, 20, 0, 0},
		{30, 40, 0, 200},
		{0, 0, 0, 0},
	})
	defer intensity.Close()

	stats, err := Objects(labels, intensity)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	first := stats[0]
	assert.Equal(t, int32(5), first.Identity)
	assert.Equal(t, 4, first.Area)
	assert.Equal(t, geometry.RectInt{X: 0, Y: 0, Width: 2, Height: 2}, first.Bounds)
	assert.InDelta(t, 0.5, first.Centroid.X, 1e-9)
	assert.InDelta(t, 0.5, first.Centroid.Y, 1e-9)
	assert.InDelta(t, 25.0, first.MeanIntensity, 1e-9)
	assert.Greater(t, first.StdIntensity, 0.0)
	assert.Equal(t, 40.0, first.MaxIntensity)

	second := stats[1]
	assert.Equal(t, int32(9), second.Identity)
	assert.Equal(t, 1, second.Area)
	assert.Equal(t, geometry.RectInt{X: 3, Y: 1, Width: 1, Height: 1}, second.Bounds)
	assert.InDelta(t, 200.0, second.MeanIntensity, 1e-9)
	assert.Zero(t, second.StdIntensity)
}

func TestObjectsEmptyMask(t *testing.T) {
	labels := newLabels(t, [][]int32{{0, 0}})
	defer labels.Close()
	intensity := newGray8(t, [][]uint8{{1, 2}})
	defer intensity.Close()

	stats, err := Objects(labels, intensity)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestObjectsValidation(t *testing.T) {
	labels := newLabels(t, [][]int32{{1, 0}})
	defer labels.Close()
	intensity := newGray8(t, [][]uint8{{1, 2}})
	defer intensity.Close()

	t.Run("wrong label type", func(t *testing.T) {
		_, err := Objects(intensity, intensity)
		assert.Error(t, err)
	})

	t.Run("wrong intensity type", func(t *testing.T) {
		_, err := Objects(labels, labels)
		assert.Error(t, err)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		big := newGray8(t, [][]uint8{{1, 2, 3}})
		defer big.Close()
		_, err := Objects(labels, big)
		assert.Error(t, err)
	})
}
