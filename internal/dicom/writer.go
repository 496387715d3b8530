package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/dicomkit/dicomkit/internal/dcmerr"
	"github.com/dicomkit/dicomkit/internal/dcmlog"
	"github.com/dicomkit/dicomkit/internal/dicomuid"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
	"github.com/dicomkit/dicomkit/vr"
)

// WriterOption configures a Writer at construction time.
type WriterOption func(*Writer)

// WithImplementationUID overrides the writer-generated ImplementationClassUID.
func WithImplementationUID(uid string) WriterOption {
	return func(w *Writer) { w.implementationClassUID = uid }
}

// WithImplementationVersionName overrides the writer-generated
// ImplementationVersionName.
func WithImplementationVersionName(name string) WriterOption {
	return func(w *Writer) { w.implementationVersionName = name }
}

// WithRules attaches anonymization rules applied before serialization.
func WithRules(r *Rules) WriterOption {
	return func(w *Writer) { w.rules = r }
}

// Writer serializes an ElementMap back to DICOM's on-wire byte layout
//. It owns no state across calls besides its constructor
// dependencies, mirroring Parser.
type Writer struct {
	dict                      *tag.Dictionary
	rules                     *Rules
	implementationClassUID    string
	implementationVersionName string
}

// NewWriter builds a Writer with freshly generated File Meta identity
// values unless overridden.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{
		dict:                      tag.Std,
		implementationClassUID:    dicomuid.New(),
		implementationVersionName: "DICOMKIT_1",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write serializes elements to a complete DICOM file byte stream: preamble,
// DICM magic, File Meta group (always Explicit VR LE), then the Data Set
// encoded per the transfer syntax named in (0002,0010).
func (w *Writer) Write(elements *ElementMap, preamble []byte) ([]byte, error) {
	if w.rules != nil {
		elements = w.rules.Apply(elements)
	}

	tsUID, ok := elements.GetString(tag.TransferSyntaxUID)
	if !ok {
		return nil, dcmerr.New(dcmerr.NotDicom, "ElementMap has no (0002,0010) TransferSyntaxUID to write against")
	}
	syntax := transfer.FromUID(tsUID)
	if !syntax.Supported() {
		return nil, dcmerr.Newf(dcmerr.UnsupportedSyntax, "transfer syntax %s (%s) is not supported", syntax.Name(), tsUID)
	}

	var metaElems, dataElems []*Element
	elements.Range(func(t tag.Tag, e *Element) bool {
		switch {
		case t == tag.FileMetaInformationGroupLength:
			// recomputed below; drop the parsed value
		case t.IsFileMeta():
			metaElems = append(metaElems, e)
		default:
			dataElems = append(dataElems, e)
		}
		return true
	})
	metaElems = w.withSynthesizedIdentity(metaElems)
	sort.SliceStable(metaElems, func(i, j int) bool { return tagLess(metaElems[i].Tag, metaElems[j].Tag) })

	metaBody, err := w.encodeElements(metaElems, false, true)
	if err != nil {
		return nil, fmt.Errorf("encoding file meta group: %w", err)
	}
	groupLenElem := &Element{
		Tag:   tag.FileMetaInformationGroupLength,
		VR:    vr.UL,
		VL:    DefinedVL(4),
		Value: ValueU32s([]uint32{uint32(len(metaBody))}),
	}
	groupLenBytes, err := w.encodeElements([]*Element{groupLenElem}, false, true)
	if err != nil {
		return nil, fmt.Errorf("encoding FileMetaInformationGroupLength: %w", err)
	}

	dataBody, err := w.encodeElements(dataElems, syntax.IsImplicit(), !syntax.IsBigEndian())
	if err != nil {
		return nil, fmt.Errorf("encoding data set: %w", err)
	}

	var out bytes.Buffer
	if len(preamble) != 128 {
		preamble = make([]byte, 128)
	}
	out.Write(preamble)
	out.WriteString("DICM")
	out.Write(groupLenBytes)
	out.Write(metaBody)
	out.Write(dataBody)
	return out.Bytes(), nil
}

// withSynthesizedIdentity overrides (or appends) ImplementationClassUID and
// ImplementationVersionName with writer-controlled values. Every other
// File Meta element the caller supplied passes through.
func (w *Writer) withSynthesizedIdentity(metaElems []*Element) []*Element {
	out := make([]*Element, 0, len(metaElems)+2)
	var sawClassUID, sawVersionName bool
	for _, e := range metaElems {
		switch e.Tag {
		case tag.ImplementationClassUID:
			out = append(out, implementationClassUIDElement(w.implementationClassUID))
			sawClassUID = true
		case tag.ImplementationVersionName:
			out = append(out, implementationVersionNameElement(w.implementationVersionName))
			sawVersionName = true
		default:
			out = append(out, e)
		}
	}
	if !sawClassUID {
		out = append(out, implementationClassUIDElement(w.implementationClassUID))
	}
	if !sawVersionName {
		out = append(out, implementationVersionNameElement(w.implementationVersionName))
	}
	return out
}

func implementationClassUIDElement(uid string) *Element {
	return &Element{Tag: tag.ImplementationClassUID, VR: vr.UI, VL: DefinedVL(uint32(len(uid))), Value: ValueString(uid)}
}

func implementationVersionNameElement(name string) *Element {
	return &Element{Tag: tag.ImplementationVersionName, VR: vr.SH, VL: DefinedVL(uint32(len(name))), Value: ValueString(name)}
}

// tagLess orders by (group, element), used only for the File Meta group
// (the Data Set keeps parse/insertion order).
func tagLess(a, b tag.Tag) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Element < b.Element
}

// encodeElements writes elements in order (already sorted by the caller for
// File Meta; insertion order for the Data Set) using the given VR mode and
// endianness.
func (w *Writer) encodeElements(elements []*Element, implicit, littleEndian bool) ([]byte, error) {
	var buf bytes.Buffer
	order := binary.ByteOrder(binary.LittleEndian)
	if !littleEndian {
		order = binary.BigEndian
	}
	for _, e := range elements {
		if err := w.writeElement(&buf, e, implicit, order); err != nil {
			return nil, fmt.Errorf("writing element %s: %w", e.Tag, err)
		}
	}
	return buf.Bytes(), nil
}

func (w *Writer) writeElement(buf *bytes.Buffer, e *Element, implicit bool, order binary.ByteOrder) error {
	binary.Write(buf, order, e.Tag.Group)
	binary.Write(buf, order, e.Tag.Element)

	if e.Tag.IsDelimiter() {
		binary.Write(buf, order, uint32(0))
		return nil
	}

	valBytes, undefinedLength, err := w.encodeValue(e, implicit, order)
	if err != nil {
		return err
	}

	if implicit {
		length := uint32(len(valBytes))
		if undefinedLength {
			length = 0xFFFFFFFF
		}
		binary.Write(buf, order, length)
		buf.Write(valBytes)
		return nil
	}

	vrStr := string(e.VR)
	if len(vrStr) != 2 {
		dcmlog.Warn("invalid VR on write, defaulting to UN", "vr", vrStr, "tag", e.Tag.String())
		vrStr = string(vr.UN)
	}
	buf.WriteString(vrStr)

	if e.VR.IsLongLength() {
		buf.Write([]byte{0, 0})
		length := uint32(len(valBytes))
		if undefinedLength {
			length = 0xFFFFFFFF
		}
		binary.Write(buf, order, length)
	} else {
		if undefinedLength {
			return dcmerr.Newf(dcmerr.MalformedElement, "undefined length is not representable for short-length VR %s", e.VR)
		}
		binary.Write(buf, order, uint16(len(valBytes)))
	}
	buf.Write(valBytes)
	return nil
}

// encodeValue is the inverse of Parser.readValue.
func (w *Writer) encodeValue(e *Element, implicit bool, order binary.ByteOrder) ([]byte, bool, error) {
	if e.Tag == tag.PixelData {
		if fragments, ok := e.Value.Fragments(); ok {
			b, err := encodeEncapsulatedPixelData(fragments, order)
			return b, true, err
		}
	}

	// ImplementationVersionName is NUL-padded, not space-padded like other
	// SH/string values: it's a writer identity token, not display text.
	if e.Tag == tag.ImplementationVersionName {
		return padToEven([]byte(e.Value.String()), 0), false, nil
	}

	switch e.VR {
	case vr.SQ:
		items, _ := e.Value.Items()
		b, err := w.encodeSequence(items, implicit, order)
		return b, true, err

	case vr.AT:
		ss, _ := e.Value.Strings()
		var buf bytes.Buffer
		for _, s := range ss {
			var g, el uint16
			if _, err := fmt.Sscanf(s, "(%04X,%04X)", &g, &el); err != nil {
				return nil, false, dcmerr.Newf(dcmerr.MalformedElement, "malformed AT value %q", s)
			}
			binary.Write(&buf, order, g)
			binary.Write(&buf, order, el)
		}
		return buf.Bytes(), false, nil

	case vr.OB, vr.UN:
		if b, ok := e.Value.Bytes(); ok {
			return padToEven(b, 0x00), false, nil
		}
		if u8s, ok := e.Value.U8s(); ok {
			return padToEven(u8s, 0x00), false, nil
		}
		i8s, _ := e.Value.I8s()
		return padToEven(int8sToBytes(i8s), 0x00), false, nil

	case vr.OW:
		if u16s, ok := e.Value.U16s(); ok {
			return uint16sToBytes(u16s, order), false, nil
		}
		i16s, _ := e.Value.I16s()
		return int16sToBytes(i16s, order), false, nil

	case vr.OF:
		i32s, _ := e.Value.I32s()
		return int32sToBytes(i32s, order), false, nil

	case vr.OD:
		f64s, _ := e.Value.F64s()
		return float64sToBytes(f64s, order), false, nil

	case vr.US:
		u16s, _ := e.Value.U16s()
		return uint16sToBytes(u16s, order), false, nil

	case vr.SS:
		i16s, _ := e.Value.I16s()
		return int16sToBytes(i16s, order), false, nil

	case vr.UL:
		u32s, _ := e.Value.U32s()
		return uint32sToBytes(u32s, order), false, nil

	case vr.SL:
		i32s, _ := e.Value.I32s()
		return int32sToBytes(i32s, order), false, nil

	case vr.FL:
		f32s, _ := e.Value.F32s()
		return float32sToBytes(f32s, order), false, nil

	case vr.FD:
		f64s, _ := e.Value.F64s()
		return float64sToBytes(f64s, order), false, nil

	default:
		ss, _ := e.Value.Strings()
		joined := joinBackslash(ss)
		return padToEven([]byte(joined), ' '), false, nil
	}
}

func (w *Writer) encodeSequence(items []*ElementMap, implicit bool, order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer
	for _, item := range items {
		buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})
		var itemBody bytes.Buffer
		var elems []*Element
		item.Range(func(_ tag.Tag, e *Element) bool { elems = append(elems, e); return true })
		for _, e := range elems {
			if err := w.writeElement(&itemBody, e, implicit, order); err != nil {
				return nil, err
			}
		}
		binary.Write(&buf, order, uint32(itemBody.Len()))
		buf.Write(itemBody.Bytes())
	}
	buf.Write([]byte{0xFE, 0xFF, 0xDD, 0xE0})
	binary.Write(&buf, order, uint32(0))
	return buf.Bytes(), nil
}

// encodeEncapsulatedPixelData writes the Basic Offset Table (always
// re-emitted empty; its content is not retained by the parser) followed by
// one item per fragment, in the flat order Element.Value stores them in.
func encodeEncapsulatedPixelData(fragments [][]byte, order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})
	binary.Write(&buf, order, uint32(0))

	for _, fragment := range fragments {
		buf.Write([]byte{0xFE, 0xFF, 0x00, 0xE0})
		binary.Write(&buf, order, uint32(len(fragment)))
		buf.Write(fragment)
	}
	buf.Write([]byte{0xFE, 0xFF, 0xDD, 0xE0})
	binary.Write(&buf, order, uint32(0))
	return buf.Bytes(), nil
}

func padToEven(b []byte, pad byte) []byte {
	if len(b)%2 == 0 {
		return b
	}
	return append(append([]byte(nil), b...), pad)
}

func joinBackslash(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += "\\"
		}
		out += s
	}
	return out
}

func int8sToBytes(v []int8) []byte {
	out := make([]byte, len(v))
	for i, x := range v {
		out[i] = byte(x)
	}
	return out
}

func uint16sToBytes(v []uint16, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*2)
	for i, x := range v {
		order.PutUint16(out[i*2:], x)
	}
	return out
}

func int16sToBytes(v []int16, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*2)
	for i, x := range v {
		order.PutUint16(out[i*2:], uint16(x))
	}
	return out
}

func uint32sToBytes(v []uint32, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(out[i*4:], x)
	}
	return out
}

func int32sToBytes(v []int32, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(out[i*4:], uint32(x))
	}
	return out
}

func float32sToBytes(v []float32, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		order.PutUint32(out[i*4:], math.Float32bits(x))
	}
	return out
}

func float64sToBytes(v []float64, order binary.ByteOrder) []byte {
	out := make([]byte, len(v)*8)
	for i, x := range v {
		order.PutUint64(out[i*8:], math.Float64bits(x))
	}
	return out
}
