// Command secondaryview runs secondary object identification and shows the
// inspection figure in a window.
package main

import (
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"

	"github.com/dkoove/TissueMAPS/internal/imgio"
	"github.com/dkoove/TissueMAPS/internal/secondary"
)

func main() {
	intensityPath := flag.String("intensity", "", "Path to grayscale intensity image (TIFF, PNG, or JPEG)")
	labelsPath := flag.String("labels", "", "Path to primary seed label mask (16-bit grayscale PNG)")
	factor := flag.Float64("factor", 1.0, "Correction factor applied to every object")
	minThreshold := flag.Int("min-threshold", 0, "Minimum threshold level in the image's native range")
	flag.Parse()

	if *intensityPath == "" || *labelsPath == "" {
		fmt.Println("Usage: secondaryview -intensity <path> -labels <path> [-factor 1.4] [-min-threshold 10]")
		os.Exit(1)
	}

	intensity, err := imgio.LoadIntensity(*intensityPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load intensity image: %v\n", err)
		os.Exit(1)
	}
	defer intensity.Close()

	labels, err := imgio.LoadLabels(*labelsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load label mask: %v\n", err)
		os.Exit(1)
	}
	defer labels.Close()

	opts := secondary.DefaultOptions()
	opts.CorrectionFactors = []float64{*factor}
	opts.MinThreshold = *minThreshold
	opts.Plot = true

	result, err := secondary.Identify(labels, intensity, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Identification failed: %v\n", err)
		os.Exit(1)
	}
	defer result.Objects.Close()

	viewer := app.New()
	win := viewer.NewWindow("Secondary Objects")

	img := fynecanvas.NewImageFromImage(result.Figure)
	img.FillMode = fynecanvas.ImageFillContain
	bounds := result.Figure.Bounds()
	win.SetContent(img)
	win.Resize(fyne.NewSize(float32(bounds.Dx()), float32(bounds.Dy())))
	win.ShowAndRun()
}
