package rle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

// headerSize is the fixed size of a DICOM RLE Header (PS3.5 Annex G.3): a
// 4-byte segment count followed by 15 4-byte offsets, each relative to the
// start of the header. Unused offset slots are zero.
const headerSize = 64

const maxSegments = 15

// Encode compresses img using PackBits per-segment, following DICOM PS3.5
// Annex G's convention of one segment per sample plane (one segment for an
// 8-bit gray image, two high/low-byte segments for a 16-bit one), writing
// the standard 64-byte RLE Header ahead of the segment data.
func Encode(w *bytes.Buffer, img image.Image) error {
	segments, err := splitSegments(img)
	if err != nil {
		return err
	}
	if len(segments) > maxSegments {
		return fmt.Errorf("rle: too many segments (%d)", len(segments))
	}

	for i := range segments {
		segments[i] = encodePackBits(segments[i])
		if len(segments[i])%2 != 0 {
			segments[i] = append(segments[i], 0x00)
		}
	}

	offsets := make([]uint32, maxSegments)
	offset := uint32(headerSize)
	for i, seg := range segments {
		offsets[i] = offset
		offset += uint32(len(seg))
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(segments))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, offsets); err != nil {
		return err
	}
	for _, seg := range segments {
		w.Write(seg)
	}
	return nil
}

func splitSegments(img image.Image) ([][]byte, error) {
	switch g := img.(type) {
	case *image.Gray:
		return [][]byte{append([]byte(nil), g.Pix...)}, nil
	case *image.Gray16:
		n := len(g.Pix) / 2
		high := make([]byte, n)
		low := make([]byte, n)
		for i := 0; i < n; i++ {
			high[i] = g.Pix[2*i]
			low[i] = g.Pix[2*i+1]
		}
		return [][]byte{high, low}, nil
	default:
		return nil, fmt.Errorf("rle: unsupported image type %T", img)
	}
}

// Decode decompresses a DICOM PS3.5 Annex G RLE stream (64-byte Header of
// segment count + 15 offsets, each PackBits-encoded) back into a Gray or
// Gray16 image, picking the concrete type by segment count. Grounded on the
// reference decoder in the jpegs RLE package this engine's codec adapter
// previously vendored.
func Decode(data []byte, width, height int) (image.Image, error) {
	if len(data) < headerSize {
		return nil, errors.New("rle: data too short for header")
	}

	numSegments := binary.LittleEndian.Uint32(data[0:4])
	if numSegments == 0 {
		return nil, errors.New("rle: zero segments")
	}
	if numSegments > maxSegments {
		return nil, fmt.Errorf("rle: invalid segment count %d", numSegments)
	}
	var offsets [maxSegments]uint32
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(data[4+i*4 : 8+i*4])
	}

	planeLen := width * height
	segments := make([][]byte, numSegments)
	for i := uint32(0); i < numSegments; i++ {
		start := offsets[i]
		var end uint32
		if i < numSegments-1 {
			end = offsets[i+1]
		} else {
			end = uint32(len(data))
		}
		if start > uint32(len(data)) || end > uint32(len(data)) || start > end {
			return nil, fmt.Errorf("rle: invalid segment offset/length for segment %d", i)
		}

		decoded, err := decodePackBits(data[start:end], planeLen)
		if err != nil {
			return nil, fmt.Errorf("rle: segment %d: %w", i, err)
		}
		if len(decoded) != planeLen {
			return nil, fmt.Errorf("rle: decoded segment %d size %d does not match expected pixels %d", i, len(decoded), planeLen)
		}
		segments[i] = decoded
	}

	switch numSegments {
	case 1:
		img := image.NewGray(image.Rect(0, 0, width, height))
		copy(img.Pix, segments[0])
		return img, nil
	case 2:
		img := image.NewGray16(image.Rect(0, 0, width, height))
		high, low := segments[0], segments[1]
		for i := 0; i < planeLen; i++ {
			img.Pix[2*i] = high[i]
			img.Pix[2*i+1] = low[i]
		}
		return img, nil
	default:
		return nil, fmt.Errorf("rle: unsupported segment count %d", numSegments)
	}
}
