package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dicomkit/dicomkit/codec"
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
)

// NewAnalyzeCmd prints metadata, transfer syntax, and the frame count of a
// DICOM file and, with --decode, sample statistics for frame 0.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "print metadata and pixel-frame statistics for a DICOM file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("file path is required")
			}
			decode, _ := cmd.Flags().GetBool("decode")
			return runAnalyze(path, decode)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path ('-' for stdin)")
	pf.Bool("decode", false, "print frame 0 statistics, decoding through a dicom.FrameDecoder when pixel data is encapsulated")
	return cmd
}

func runAnalyze(path string, decode bool) error {
	f, err := openInput(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	parser := dicom.NewParser()
	result, err := parser.Parse(buf)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	elements := result.Elements

	fmt.Printf("Total elements: %d\n", elements.Len())
	fmt.Printf("TransferSyntax: %s (%s)\n\n", result.TransferSyntax, result.TransferSyntax.Name())

	fmt.Println("=== Key Metadata ===")
	if v, ok := elements.GetString(tag.Modality); ok {
		fmt.Printf("Modality: %s\n", v)
	}
	rows, _ := elements.GetInt(tag.Rows)
	cols, _ := elements.GetInt(tag.Columns)
	fmt.Printf("Rows: %d\n", rows)
	fmt.Printf("Columns: %d\n", cols)
	bitsAllocated, hasBits := elements.GetInt(tag.BitsAllocated)
	if !hasBits {
		bitsAllocated = 16
	}
	fmt.Printf("BitsAllocated: %d\n", bitsAllocated)
	signed, _ := elements.GetInt(tag.PixelRepresentation)

	if result.Frames == nil {
		fmt.Println("\nNo pixel data present.")
		return nil
	}

	fmt.Printf("\n=== Pixel Data (%d frame(s)) ===\n", result.Frames.FrameCount)
	if !decode {
		return nil
	}

	var decoder dicom.FrameDecoder
	if result.Frames.Encapsulated {
		decoder = codec.ByTransferSyntax(string(result.TransferSyntax), rows, cols)
	}
	pipeline := dicom.NewPixelPipeline(decoder)
	frame0, err := pipeline.DecodeFirstFrame(result.Frames, bitsAllocated, signed == 1)
	if err != nil {
		return fmt.Errorf("decode frame 0: %w", err)
	}
	min16, max16 := minMax(frame0)
	fmt.Printf("Frame 0: min=%d max=%d samples=%d\n", min16, max16, len(frame0))
	return nil
}

func minMax(samples []uint16) (uint16, uint16) {
	if len(samples) == 0 {
		return 0, 0
	}
	min, max := samples[0], samples[0]
	for _, v := range samples[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
