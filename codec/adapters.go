// Package codec adapts the engine's compression libraries to the
// dicom.FrameDecoder interface PixelPipeline dispatches encapsulated frames
// to. dicom itself never parses a compressed bitstream; this
// package is where that boundary gets crossed.
package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/pkg/compress/jpeg2k"
	"github.com/dicomkit/dicomkit/pkg/compress/rle"
)

// ByTransferSyntax returns the FrameDecoder for a transfer syntax UID, or
// nil if this engine carries no codec for it.
func ByTransferSyntax(uid string, rows, cols int) dicom.FrameDecoder {
	switch uid {
	case "1.2.840.10008.1.2.4.90", "1.2.840.10008.1.2.4.91":
		return &jpeg2kDecoder{}
	case "1.2.840.10008.1.2.5":
		return &rleDecoder{rows: rows, cols: cols}
	default:
		return nil
	}
}

type jpeg2kDecoder struct{}

func (d *jpeg2kDecoder) Decode(frameBytes []byte, bitsAllocated int, signed bool) ([]uint16, error) {
	img, err := jpeg2k.Decode(bytes.NewReader(frameBytes))
	if err != nil {
		return nil, fmt.Errorf("jpeg2000 decode: %w", err)
	}
	return imageToU16(img)
}

type rleDecoder struct {
	rows, cols int
}

func (d *rleDecoder) Decode(frameBytes []byte, bitsAllocated int, signed bool) ([]uint16, error) {
	img, err := rle.Decode(frameBytes, d.cols, d.rows)
	if err != nil {
		return nil, fmt.Errorf("rle decode: %w", err)
	}
	return imageToU16(img)
}

// imageToU16 flattens a decoded image.Image into row-major uint16 samples,
// widening 8-bit gray and passing 16-bit gray through unchanged.
func imageToU16(img image.Image) ([]uint16, error) {
	switch g := img.(type) {
	case *image.Gray16:
		out := make([]uint16, len(g.Pix)/2)
		for i := range out {
			out[i] = uint16(g.Pix[2*i])<<8 | uint16(g.Pix[2*i+1])
		}
		return out, nil
	case *image.Gray:
		out := make([]uint16, len(g.Pix))
		for i, b := range g.Pix {
			out[i] = uint16(b)
		}
		return out, nil
	default:
		b := img.Bounds()
		out := make([]uint16, 0, b.Dx()*b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, _, _, _ := img.At(x, y).RGBA()
				out = append(out, uint16(r))
			}
		}
		return out, nil
	}
}
