// Package imgio loads microscopy images into OpenCV matrices and writes
// label masks and figures back to disk. Intensity images keep their source
// depth (8-bit or 16-bit grayscale); label masks are read from and written
// to 16-bit grayscale PNG.
package imgio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
)

// LoadIntensity loads a grayscale intensity image (TIFF, PNG, or JPEG) as a
// CV8U or CV16U Mat depending on the source depth. Color sources are
// converted to 8-bit luminance.
func LoadIntensity(path string) (gocv.Mat, error) {
	img, err := decode(path)
	if err != nil {
		return gocv.NewMat(), err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray16, ok := img.(*image.Gray16); ok {
		mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV16U)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := gray16.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
				mat.SetShortAt(y, x, int16(v))
			}
		}
		return mat, nil
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			mat.SetUCharAt(y, x, g.Y)
		}
	}
	return mat, nil
}

// LoadLabels loads a label mask as a CV32S Mat. Grayscale pixel values are
// taken verbatim as object identities, 0 meaning background.
func LoadLabels(path string) (gocv.Mat, error) {
	img, err := decode(path)
	if err != nil {
		return gocv.NewMat(), err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32S)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch px := img.(type) {
			case *image.Gray16:
				mat.SetIntAt(y, x, int32(px.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
			case *image.Gray:
				mat.SetIntAt(y, x, int32(px.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			default:
				g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				mat.SetIntAt(y, x, int32(g.Y))
			}
		}
	}
	return mat, nil
}

// WriteLabels writes a CV32S label mask as a 16-bit grayscale PNG.
// Identities above 65535 do not fit the format and fail.
func WriteLabels(path string, labels gocv.Mat) error {
	if labels.Type() != gocv.MatTypeCV32S {
		return fmt.Errorf("write labels: mask must be CV32S, got %d", labels.Type())
	}

	rows, cols := labels.Rows(), labels.Cols()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := labels.GetIntAt(y, x)
			if v < 0 || v > 0xFFFF {
				return fmt.Errorf("write labels: identity %d does not fit 16-bit PNG", v)
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}

	return WritePNG(path, img)
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
