// Command identifytest runs secondary object identification on an
// intensity image and a primary seed mask, and reports the result.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkoove/TissueMAPS/internal/imgio"
	"github.com/dkoove/TissueMAPS/internal/measure"
	"github.com/dkoove/TissueMAPS/internal/secondary"
	"github.com/dkoove/TissueMAPS/internal/version"
)

func main() {
	intensityPath := flag.String("intensity", "", "Path to grayscale intensity image (TIFF, PNG, or JPEG)")
	labelsPath := flag.String("labels", "", "Path to primary seed label mask (16-bit grayscale PNG)")
	factorsArg := flag.String("factors", "1.0", "Comma-separated correction factors (one, or one per object)")
	minThreshold := flag.Int("min-threshold", 0, "Minimum threshold level in the image's native range")
	outPath := flag.String("out", "secondary.png", "Output path for the secondary label mask")
	figurePath := flag.String("figure", "", "Optional output path for the inspection figure PNG")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *intensityPath == "" || *labelsPath == "" {
		fmt.Println("Usage: identifytest -intensity <path> -labels <path> [-factors 1.4] [-min-threshold 10] [-out secondary.png] [-figure figure.png]")
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	factors, err := parseFactors(*factorsArg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid correction factors")
	}

	intensity, err := imgio.LoadIntensity(*intensityPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load intensity image")
	}
	defer intensity.Close()

	labels, err := imgio.LoadLabels(*labelsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load label mask")
	}
	defer labels.Close()

	fmt.Printf("Loaded intensity image: %dx%d pixels\n", intensity.Cols(), intensity.Rows())
	fmt.Printf("Loaded seed mask: %dx%d pixels\n", labels.Cols(), labels.Rows())

	opts := secondary.DefaultOptions()
	opts.CorrectionFactors = factors
	opts.MinThreshold = *minThreshold
	opts.Plot = *figurePath != ""

	start := time.Now()
	result, err := secondary.Identify(labels, intensity, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("identification failed")
	}
	defer result.Objects.Close()
	log.Info().Dur("elapsed", time.Since(start)).Msg("identification complete")

	stats, err := measure.Objects(result.Objects, intensity)
	if err != nil {
		log.Fatal().Err(err).Msg("measurement failed")
	}

	fmt.Printf("\nIdentified %d secondary objects:\n", len(stats))
	fmt.Printf("%8s %8s %14s %20s %10s\n", "object", "area", "centroid", "bounds", "mean")
	for _, s := range stats {
		centroid := fmt.Sprintf("(%.0f,%.0f)", s.Centroid.X, s.Centroid.Y)
		bounds := fmt.Sprintf("[%d,%d %dx%d]", s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height)
		fmt.Printf("%8d %8d %14s %20s %10.1f\n", s.Identity, s.Area, centroid, bounds, s.MeanIntensity)
	}

	if err := imgio.WriteLabels(*outPath, result.Objects); err != nil {
		log.Fatal().Err(err).Msg("failed to write output mask")
	}
	fmt.Printf("\nWrote secondary mask to %s\n", *outPath)

	if *figurePath != "" && result.Figure != nil {
		if err := imgio.WritePNG(*figurePath, result.Figure); err != nil {
			log.Fatal().Err(err).Msg("failed to write figure")
		}
		fmt.Printf("Wrote figure to %s\n", *figurePath)
	}
}

func parseFactors(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	factors := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse factor %q: %w", p, err)
		}
		factors = append(factors, f)
	}
	return factors, nil
}
