package dicom

import (
	"context"
	"sync"

	"github.com/dicomkit/dicomkit/internal/dcmerr"
	"github.com/dicomkit/dicomkit/internal/workerpool"
	"github.com/dicomkit/dicomkit/tag"
)

// PixelFrames is the result of splitting (7FE0,0010) Pixel Data into
// per-frame slices, computed once at parse time. Exactly one of the Native* fields or EncapsulatedFrames
// is populated.
type PixelFrames struct {
	Encapsulated bool
	FrameCount   int

	NativeU8  [][]uint8
	NativeI8  [][]int8
	NativeU16 [][]uint16
	NativeI16 [][]int16

	// EncapsulatedFrames[f] is the ordered list of compressed fragments that
	// make up frame f, after applying the fragments-per-frame grouping rule.
	EncapsulatedFrames [][][]byte
}

// splitFrames derives a PixelFrames from the parsed PixelData element, or
// returns (nil, nil) when no pixel data is present.
func splitFrames(elements *ElementMap) (*PixelFrames, error) {
	pd, ok := elements.Get(tag.PixelData)
	if !ok {
		return nil, nil
	}

	numberOfFrames := 1
	if n, ok := elements.GetInt(tag.NumberOfFrames); ok && n > 0 {
		numberOfFrames = n
	}

	if fragments, ok := pd.Value.Fragments(); ok {
		return groupFragments(fragments, numberOfFrames), nil
	}

	rows, _ := elements.GetInt(tag.Rows)
	cols, _ := elements.GetInt(tag.Columns)
	samples := 1
	if n, ok := elements.GetInt(tag.SamplesPerPixel); ok && n > 0 {
		samples = n
	}
	sliceSize := rows * cols * samples
	if sliceSize == 0 {
		return nil, dcmerr.New(dcmerr.MalformedImage, "Rows/Columns/SamplesPerPixel missing or zero; cannot partition PixelData into frames")
	}

	switch pd.Value.Kind {
	case KindU8s:
		frames, err := partition(pd.Value.u8s, sliceSize)
		return &PixelFrames{FrameCount: len(frames), NativeU8: frames}, err
	case KindI8s:
		frames, err := partition(pd.Value.i8s, sliceSize)
		return &PixelFrames{FrameCount: len(frames), NativeI8: frames}, err
	case KindI16s:
		frames, err := partition(pd.Value.i16s, sliceSize)
		return &PixelFrames{FrameCount: len(frames), NativeI16: frames}, err
	case KindU16s:
		frames, err := partition(pd.Value.u16s, sliceSize)
		return &PixelFrames{FrameCount: len(frames), NativeU16: frames}, err
	}
	return nil, nil
}

func partition[T any](flat []T, sliceSize int) ([][]T, error) {
	if len(flat)%sliceSize != 0 {
		return nil, dcmerr.Newf(dcmerr.MalformedElement, "pixel data length %d is not a multiple of the frame slice size %d", len(flat), sliceSize)
	}
	n := len(flat) / sliceSize
	out := make([][]T, n)
	for i := 0; i < n; i++ {
		out[i] = flat[i*sliceSize : (i+1)*sliceSize]
	}
	return out, nil
}

// groupFragments assigns fragments_per_frame = total/numberOfFrames
// fragments to each frame when that divides evenly and exceeds 1:1;
// otherwise each fragment is its own frame.
func groupFragments(fragments [][]byte, numberOfFrames int) *PixelFrames {
	total := len(fragments)
	perFrame := 1
	frameCount := total
	if numberOfFrames > 0 && total > numberOfFrames && total%numberOfFrames == 0 {
		perFrame = total / numberOfFrames
		frameCount = numberOfFrames
	}
	grouped := make([][][]byte, frameCount)
	for i := 0; i < frameCount; i++ {
		start := i * perFrame
		end := start + perFrame
		if end > total {
			end = total
		}
		grouped[i] = fragments[start:end]
	}
	return &PixelFrames{Encapsulated: true, FrameCount: frameCount, EncapsulatedFrames: grouped}
}

// FrameDecoder is the external codec capability PixelPipeline dispatches
// compressed frames to. This package never implements JPEG/JPEG2000 itself
//; callers wire in a concrete decoder.
type FrameDecoder interface {
	Decode(frameBytes []byte, bitsAllocated int, signed bool) ([]uint16, error)
}

// Progress reports pipeline decode progress as a monotonic loaded count.
type Progress struct {
	Decoded int
	Total   int
}

// Percent returns the (decoded/total)*100 completion percentage.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Decoded) / float64(p.Total) * 100
}

// PipelineObserver receives pixel-decode lifecycle events. A nil observer is
// valid; every method is optional to implement by embedding
// NoopPipelineObserver.
type PipelineObserver interface {
	OnProgress(Progress)
	OnDecoded(frameIndex int)
	OnError(frameIndex int, err error)
	OnLoadEnd()
}

// NoopPipelineObserver implements PipelineObserver with no-ops, to be
// embedded by callers that only care about a subset of events.
type NoopPipelineObserver struct{}

func (NoopPipelineObserver) OnProgress(Progress)          {}
func (NoopPipelineObserver) OnDecoded(int)                {}
func (NoopPipelineObserver) OnError(int, error)           {}
func (NoopPipelineObserver) OnLoadEnd()                   {}

// PixelPipeline turns parsed PixelFrames into per-frame typed-array pixel
// buffers, dispatching compressed formats to a FrameDecoder.
type PixelPipeline struct {
	decoder FrameDecoder
}

// NewPixelPipeline builds a pipeline. decoder may be nil when frames are
// never compressed (algorithm none); DecodeFirstFrame and DecodeRemaining
// report DecoderFailure if a compressed frame is encountered with a nil
// decoder.
func NewPixelPipeline(decoder FrameDecoder) *PixelPipeline {
	return &PixelPipeline{decoder: decoder}
}

// DecodeFirstFrame decodes frame 0 synchronously. ImageFactory MUST NOT run
// until this returns.
func (pp *PixelPipeline) DecodeFirstFrame(frames *PixelFrames, bitsAllocated int, signed bool) ([]uint16, error) {
	if frames == nil || frames.FrameCount == 0 {
		return nil, dcmerr.New(dcmerr.MalformedImage, "no pixel-data frames available")
	}
	if !frames.Encapsulated {
		return nativeFrameAsU16(frames, 0), nil
	}
	if pp.decoder == nil {
		return nil, dcmerr.New(dcmerr.DecoderFailure, "encapsulated pixel data requires a FrameDecoder but none was configured")
	}
	return pp.decodeFragmentFrame(frames, 0, bitsAllocated, signed)
}

// DecodeRemaining decodes frames 1..N-1 of encapsulated data; results[0]
// stays nil because frame 0 goes through DecodeFirstFrame. For native
// (uncompressed) data nothing is decoded: every frame, frame 0 included, is
// returned as uint16 samples. For encapsulated data, frames decode concurrently in a bounded worker pool; a per-frame
// decode failure is reported via obs.OnError and does not abort the other
// frames nor the ElementMap. Cancelling
// ctx implements abort(): outstanding decodes are abandoned and no further
// ones start; OnLoadEnd still fires exactly once, after every task returns.
func (pp *PixelPipeline) DecodeRemaining(ctx context.Context, frames *PixelFrames, bitsAllocated int, signed bool, concurrency int, obs PipelineObserver) [][]uint16 {
	if obs == nil {
		obs = NoopPipelineObserver{}
	}
	results := make([][]uint16, frames.FrameCount)
	if frames.FrameCount == 0 {
		obs.OnLoadEnd()
		return results
	}

	if !frames.Encapsulated {
		for i := 0; i < frames.FrameCount; i++ {
			results[i] = nativeFrameAsU16(frames, i)
			obs.OnDecoded(i)
			obs.OnProgress(Progress{Decoded: i + 1, Total: frames.FrameCount})
		}
		obs.OnLoadEnd()
		return results
	}

	var decoded int
	var mu sync.Mutex
	pool := workerpool.New(ctx, concurrency)
	for i := 1; i < frames.FrameCount; i++ {
		i := i
		pool.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}
			out, err := pp.decodeFragmentFrame(frames, i, bitsAllocated, signed)
			if err != nil {
				obs.OnError(i, err)
			} else {
				results[i] = out
			}
			mu.Lock()
			decoded++
			n := decoded
			mu.Unlock()
			obs.OnDecoded(i)
			obs.OnProgress(Progress{Decoded: n + 1, Total: frames.FrameCount})
			return nil
		})
	}
	_ = pool.Wait()
	obs.OnLoadEnd()
	return results
}

func (pp *PixelPipeline) decodeFragmentFrame(frames *PixelFrames, index int, bitsAllocated int, signed bool) ([]uint16, error) {
	if pp.decoder == nil {
		return nil, dcmerr.New(dcmerr.DecoderFailure, "encapsulated pixel data requires a FrameDecoder but none was configured")
	}
	fragments := frames.EncapsulatedFrames[index]
	var joined []byte
	if len(fragments) == 1 {
		joined = fragments[0]
	} else {
		for _, f := range fragments {
			joined = append(joined, f...)
		}
	}
	out, err := pp.decoder.Decode(joined, bitsAllocated, signed)
	if err != nil {
		return nil, dcmerr.Wrap(dcmerr.DecoderFailure, err, "frame decoder failed")
	}
	return out, nil
}

func nativeFrameAsU16(frames *PixelFrames, index int) []uint16 {
	switch {
	case frames.NativeU16 != nil:
		return frames.NativeU16[index]
	case frames.NativeI16 != nil:
		src := frames.NativeI16[index]
		out := make([]uint16, len(src))
		for i, v := range src {
			out[i] = uint16(v)
		}
		return out
	case frames.NativeU8 != nil:
		src := frames.NativeU8[index]
		out := make([]uint16, len(src))
		for i, v := range src {
			out[i] = uint16(v)
		}
		return out
	case frames.NativeI8 != nil:
		src := frames.NativeI8[index]
		out := make([]uint16, len(src))
		for i, v := range src {
			out[i] = uint16(int8(v))
		}
		return out
	}
	return nil
}
