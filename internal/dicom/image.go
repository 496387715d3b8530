package dicom

import (
	"github.com/dicomkit/dicomkit/internal/dcmerr"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
)

// RSI is a per-slice Rescale Slope/Intercept linear transform, applied to
// stored pixel values to obtain modality-calibrated ones.
type RSI struct {
	Slope     float64
	Intercept float64
}

// IdentityRSI is the (1, 0) transform that leaves values unchanged.
func IdentityRSI() RSI { return RSI{Slope: 1, Intercept: 0} }

// IsIdentity reports whether this RSI is the no-op (1, 0) transform.
func (r RSI) IsIdentity() bool { return r.Slope == 1 && r.Intercept == 0 }

// Apply rescales a raw stored value.
func (r RSI) Apply(raw float64) float64 { return raw*r.Slope + r.Intercept }

// Meta is the small set of cross-slice identity fields AppendSlice requires
// to match before accepting a new slice. AppendFrame does not check it.
type Meta struct {
	Modality         string
	StudyInstanceUID string
	SeriesUID        string
	BitsStored       int
	IsSigned         bool
}

// Image is the multi-frame pixel entity ImageFactory builds from an
// ElementMap and its decoded pixel frames.
type Image struct {
	Geometry                  Geometry
	Frames                    [][]uint16
	RSIPerSlice               []RSI
	PhotometricInterpretation string
	PlanarConfiguration       int
	NumberOfComponents        int
	Meta                      Meta
}

// ImageFactory derives an Image from parsed elements and already-decoded
// per-frame pixel buffers.
type ImageFactory struct {
	dict *tag.Dictionary
}

// NewImageFactory builds a factory using the standard dictionary.
func NewImageFactory() *ImageFactory {
	return &ImageFactory{dict: tag.Std}
}

// Build constructs an Image. frameBuffers must already be decoded (frame 0
// synchronously, the rest however the caller's PixelPipeline scheduled
// them); Build itself does no decoding.
func (f *ImageFactory) Build(elements *ElementMap, frameBuffers [][]uint16, syntax transfer.Syntax) (*Image, error) {
	rows, rowsOK := elements.GetInt(tag.Rows)
	cols, colsOK := elements.GetInt(tag.Columns)
	if !rowsOK || !colsOK || rows <= 0 || cols <= 0 {
		return nil, dcmerr.New(dcmerr.MalformedImage, "missing or non-positive Rows/Columns")
	}

	spacing := Spacing{Row: 1, Column: 1, Slice: 1}
	if vals, ok := elements.GetFloats(tag.PixelSpacing); ok && len(vals) >= 2 {
		spacing.Row, spacing.Column = vals[0], vals[1]
	} else if vals, ok := elements.GetFloats(tag.ImagerPixelSpacing); ok && len(vals) >= 2 {
		spacing.Row, spacing.Column = vals[0], vals[1]
	}

	origin := Point3{0, 0, 0}
	if vals, ok := elements.GetFloats(tag.ImagePositionPatient); ok && len(vals) >= 3 {
		origin = Point3{vals[0], vals[1], vals[2]}
	}

	orientation := IdentityOrientation()
	if vals, ok := elements.GetFloats(tag.ImageOrientationPatient); ok && len(vals) >= 6 {
		row := Point3{vals[0], vals[1], vals[2]}
		col := Point3{vals[3], vals[4], vals[5]}
		orientation = Orientation{RowCosine: row, ColCosine: col, Normal: cross(row, col)}
	}

	photometric, _ := elements.GetString(tag.PhotometricInterpretation)
	if syntax.Algorithm() != transfer.AlgorithmNone && photometric != "MONOCHROME1" && photometric != "MONOCHROME2" {
		photometric = "RGB"
	}

	planar := 0
	if n, ok := elements.GetInt(tag.PlanarConfiguration); ok {
		planar = n
	}
	samples := 1
	if n, ok := elements.GetInt(tag.SamplesPerPixel); ok && n > 0 {
		samples = n
	}

	rsi := IdentityRSI()
	if vals, ok := elements.GetFloats(tag.RescaleSlope); ok && len(vals) > 0 {
		rsi.Slope = vals[0]
	}
	if vals, ok := elements.GetFloats(tag.RescaleIntercept); ok && len(vals) > 0 {
		rsi.Intercept = vals[0]
	}

	modality, _ := elements.GetString(tag.Modality)
	studyUID, _ := elements.GetString(tag.StudyInstanceUID)
	seriesUID, _ := elements.GetString(tag.SeriesInstanceUID)
	bitsStored, _ := elements.GetInt(tag.BitsStored)
	pixelRep, _ := elements.GetInt(tag.PixelRepresentation)

	slices := len(frameBuffers)
	origins := make([]Point3, slices)
	rsis := make([]RSI, slices)
	for i := range origins {
		origins[i] = origin
		rsis[i] = rsi
	}

	return &Image{
		Geometry: Geometry{
			Origins:     origins,
			Size:        Size{Columns: cols, Rows: rows, Slices: slices},
			Spacing:     spacing,
			Orientation: orientation,
		},
		Frames:                    frameBuffers,
		RSIPerSlice:               rsis,
		PhotometricInterpretation: photometric,
		PlanarConfiguration:       planar,
		NumberOfComponents:        samples,
		Meta: Meta{
			Modality:         modality,
			StudyInstanceUID: studyUID,
			SeriesUID:        seriesUID,
			BitsStored:       bitsStored,
			IsSigned:         pixelRep == 1,
		},
	}, nil
}

// Value returns the raw stored sample at voxel (i, j) of slice k, assuming
// a single-component image; multi-component callers should index Frames
// directly using NumberOfComponents as the stride.
func (img *Image) Value(i, j, k int) (uint16, error) {
	if k < 0 || k >= len(img.Frames) {
		return 0, dcmerr.Newf(dcmerr.OutOfBounds, "slice index %d out of range [0,%d)", k, len(img.Frames))
	}
	idx := (j*img.Geometry.Size.Columns + i) * img.NumberOfComponents
	frame := img.Frames[k]
	if idx < 0 || idx >= len(frame) {
		return 0, dcmerr.Newf(dcmerr.OutOfBounds, "voxel (%d,%d) out of range for slice %d", i, j, k)
	}
	return frame[idx], nil
}

// RescaledValue applies slice k's RSI to Value(i, j, k). RescaledValue ==
// Value when the slice's RSI is the identity transform.
func (img *Image) RescaledValue(i, j, k int) (float64, error) {
	v, err := img.Value(i, j, k)
	if err != nil {
		return 0, err
	}
	rsi := IdentityRSI()
	if k >= 0 && k < len(img.RSIPerSlice) {
		rsi = img.RSIPerSlice[k]
	}
	return rsi.Apply(float64(v)), nil
}

// AppendSlice inserts a new slice at the position spacetime geometry
// dictates. The new slice's rows/columns/photometric
// interpretation/meta must match the image's exactly, else SliceMismatch.
func (img *Image) AppendSlice(origin Point3, rsi RSI, frame []uint16, rows, cols int, photometric string, meta Meta) error {
	if rows != img.Geometry.Size.Rows || cols != img.Geometry.Size.Columns {
		return dcmerr.Newf(dcmerr.SliceMismatch, "slice dimensions %dx%d do not match image %dx%d", cols, rows, img.Geometry.Size.Columns, img.Geometry.Size.Rows)
	}
	if photometric != img.PhotometricInterpretation {
		return dcmerr.Newf(dcmerr.SliceMismatch, "slice photometric interpretation %q does not match image %q", photometric, img.PhotometricInterpretation)
	}
	if meta != img.Meta {
		return dcmerr.New(dcmerr.SliceMismatch, "slice meta does not match image meta")
	}

	idx := img.Geometry.SliceIndex(origin)
	img.Frames = insertFrame(img.Frames, idx, frame)
	img.Geometry.Origins = insertOrigin(img.Geometry.Origins, idx, origin)
	img.RSIPerSlice = insertRSI(img.RSIPerSlice, idx, rsi)
	img.Geometry.Size.Slices++
	return nil
}

// AppendFrame appends a frame to a multi-frame image that carries a single
// shared position, without a geometry re-derivation.
func (img *Image) AppendFrame(frame []uint16, rsi RSI) {
	origin := Point3{0, 0, 0}
	if len(img.Geometry.Origins) > 0 {
		origin = img.Geometry.Origins[len(img.Geometry.Origins)-1]
	}
	img.Frames = append(img.Frames, frame)
	img.RSIPerSlice = append(img.RSIPerSlice, rsi)
	img.Geometry.Origins = append(img.Geometry.Origins, origin)
	img.Geometry.Size.Slices++
}

func insertFrame(frames [][]uint16, idx int, frame []uint16) [][]uint16 {
	out := make([][]uint16, 0, len(frames)+1)
	out = append(out, frames[:idx]...)
	out = append(out, frame)
	out = append(out, frames[idx:]...)
	return out
}

func insertOrigin(origins []Point3, idx int, origin Point3) []Point3 {
	out := make([]Point3, 0, len(origins)+1)
	out = append(out, origins[:idx]...)
	out = append(out, origin)
	out = append(out, origins[idx:]...)
	return out
}

func insertRSI(rsis []RSI, idx int, rsi RSI) []RSI {
	out := make([]RSI, 0, len(rsis)+1)
	out = append(out, rsis[:idx]...)
	out = append(out, rsi)
	out = append(out, rsis[idx:]...)
	return out
}
