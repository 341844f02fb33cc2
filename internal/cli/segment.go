package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
	"github.com/ironsheep/digit-roi/internal/segment"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Locate the digit region of an image and write its crops",
	Long: `Locate the digit region of an image, crop and pad it, and cut it into digits.

Writes DetectedArea<id>.jpg and BoundingBox<id>.txt to the output directory,
plus Digit<id>-<n>.png per digit with --digits. With --debug-dir, the boxes
surviving every filter stage are drawn onto the working image and saved as
<id>-<nn>-<stage>.png. The located region is printed to stdout as JSON.`,
	RunE: runSegment,
}

var (
	imagePath  string
	imageID    int
	outputDir  string
	saveDigits bool
	debugDir   string
)

func init() {
	RootCmd.AddCommand(segmentCmd)

	segmentCmd.Flags().StringVar(&imagePath, "image", "", "Path to input image file (required)")
	segmentCmd.Flags().IntVar(&imageID, "id", 0, "Identifier used in output file names")
	segmentCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the configured output_dir)")
	segmentCmd.Flags().BoolVar(&saveDigits, "digits", false, "Also write one PNG per digit")
	segmentCmd.Flags().StringVar(&debugDir, "debug-dir", "", "Write a box overlay per pipeline stage to this directory")

	err := segmentCmd.MarkFlagRequired("image")
	if err != nil {
		slog.Error("Unable to mark image as required", "err", err)
		os.Exit(1)
	}
}

// segmentReport is what segment prints on success.
type segmentReport struct {
	Image        string               `json:"image"`
	ID           int                  `json:"id"`
	Region       geometry.Box         `json:"region"`
	SourceRegion geometry.Box         `json:"source_region"`
	ScaleX       float64              `json:"scale_x"`
	ScaleY       float64              `json:"scale_y"`
	Plate        segment.Plate        `json:"plate"`
	Stages       []segment.StageCount `json:"stages"`
	Digits       []geometry.Box       `json:"digits"`
	Artifacts    *segment.Artifacts   `json:"artifacts"`
}

func runSegment(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return fmt.Errorf("input image file does not exist: %s", imagePath)
	}
	out := outputDir
	if out == "" {
		out = cfg.OutputDir
	}
	debug := debugDir
	if debug == "" {
		debug = cfg.DebugDir
	}

	img, err := imaging.LoadFile(imagePath)
	if err != nil {
		return err
	}

	opts := []segment.Option{segment.WithLogger(slog.Default())}
	if debug != "" {
		obs, err := segment.NewDebugObserver(debug, imageID, slog.Default())
		if err != nil {
			return err
		}
		opts = append(opts, segment.WithObserver(obs))
	}

	p, err := cfg.NewPipeline(opts...)
	if err != nil {
		return err
	}

	slog.Info("Segmenting image", "image", imagePath, "id", imageID, "detector", cfg.Detector)

	res, err := p.Run(img)
	if err != nil {
		return fmt.Errorf("failed to segment %s: %w", imagePath, err)
	}

	artifacts, err := segment.WriteArtifacts(out, imageID, res, saveDigits)
	if err != nil {
		return err
	}

	report := segmentReport{
		Image:        imagePath,
		ID:           imageID,
		Region:       res.Region,
		SourceRegion: res.SourceRegion(),
		ScaleX:       res.ScaleX,
		ScaleY:       res.ScaleY,
		Plate:        res.Plate,
		Stages:       res.Stages,
		Digits:       make([]geometry.Box, len(res.Digits)),
		Artifacts:    artifacts,
	}
	for i, d := range res.Digits {
		report.Digits[i] = d.Box
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
