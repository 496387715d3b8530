package dicom

import (
	"fmt"
	"strings"

	"github.com/dicomkit/dicomkit/internal/bytecursor"
	"github.com/dicomkit/dicomkit/internal/charset"
	"github.com/dicomkit/dicomkit/internal/dcmerr"
	"github.com/dicomkit/dicomkit/internal/dcmlog"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
	"github.com/dicomkit/dicomkit/vr"
)

const (
	preambleLen = 128
	magicLen    = 4
)

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithDefaultCharacterSet installs term as the text decoder used before
// (or in the absence of) a (0008,0005) SpecificCharacterSet element.
func WithDefaultCharacterSet(term string) Option {
	return func(p *Parser) { p.defaultCharset = term }
}

// WithDictionary overrides the VR/keyword dictionary consulted for
// Implicit VR tags and for group-name resolution.
func WithDictionary(d *tag.Dictionary) Option {
	return func(p *Parser) { p.dict = d }
}

// Parser consumes a complete DICOM byte buffer and produces an ElementMap.
// It holds no mutable state across calls to Parse; the dictionary and
// default character set are its only constructor dependencies.
type Parser struct {
	dict           *tag.Dictionary
	defaultCharset string
}

// NewParser builds a Parser with the standard dictionary unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{dict: tag.Std}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is everything Parse derives from a buffer: the element tree, the
// resolved transfer syntax, and the pixel-data frame split (when present).
type Result struct {
	Elements       *ElementMap
	TransferSyntax transfer.Syntax
	Frames         *PixelFrames
}

// Parse reads preamble, DICM magic, File Meta, and the Data Set in turn,
// switching codecs at each boundary as the transfer syntax dictates.
func (p *Parser) Parse(buf []byte) (*Result, error) {
	if len(buf) < preambleLen+magicLen {
		return nil, dcmerr.New(dcmerr.NotDicom, "buffer shorter than preamble + DICM magic")
	}
	if string(buf[preambleLen:preambleLen+magicLen]) != "DICM" {
		return nil, dcmerr.New(dcmerr.NotDicom, "missing DICM magic at offset 128")
	}

	metaCursor := bytecursor.New(buf, true)
	elements := NewElementMap()
	cs := charset.New(p.defaultCharset)

	offset := preambleLen + magicLen
	groupLenElem, next, err := p.readDataElement(metaCursor, offset, false, cs, elements)
	if err != nil {
		return nil, fmt.Errorf("reading FileMetaInformationGroupLength: %w", err)
	}
	if groupLenElem.Tag != tag.FileMetaInformationGroupLength {
		return nil, dcmerr.Newf(dcmerr.NotDicom, "expected %s at offset %d, got %s", tag.FileMetaInformationGroupLength, offset, groupLenElem.Tag)
	}
	elements.Insert(groupLenElem)
	groupLen, _ := groupLenElem.Value.Int()
	offset = next
	metaEnd := offset + groupLen

	for offset < metaEnd {
		elem, next, err := p.readDataElement(metaCursor, offset, false, cs, elements)
		if err != nil {
			return nil, fmt.Errorf("reading file meta element at offset %d: %w", offset, err)
		}
		elements.Insert(elem)
		offset = next
	}

	tsUID, ok := elements.GetString(tag.TransferSyntaxUID)
	if !ok {
		return nil, dcmerr.New(dcmerr.NotDicom, "missing (0002,0010) TransferSyntaxUID in file meta group")
	}
	syntax := transfer.FromUID(tsUID)
	if !syntax.Supported() {
		return nil, dcmerr.Newf(dcmerr.UnsupportedSyntax, "transfer syntax %s (%s) is not supported", syntax.Name(), tsUID)
	}

	dataCursor := bytecursor.New(buf, !syntax.IsBigEndian())
	implicit := syntax.IsImplicit()

	for offset < len(buf) {
		elem, next, err := p.readDataElement(dataCursor, offset, implicit, cs, elements)
		if err != nil {
			return nil, fmt.Errorf("reading data element at offset %d: %w", offset, err)
		}
		elements.Insert(elem)
		offset = next

		if elem.Tag == tag.SpecificCharacterSet {
			terms, _ := elem.Value.Strings()
			if len(terms) > 0 {
				term := terms[0]
				if len(terms) > 1 {
					term = terms[1]
					dcmlog.Warn("multi-valued SpecificCharacterSet; using second value for decoding", "first", terms[0], "second", terms[1])
				}
				if !cs.Install(term) {
					dcmlog.Warn("unrecognized or unsupported character set term, falling back to default", "term", term)
				}
			}
		}
	}

	frames, err := splitFrames(elements)
	if err != nil {
		return nil, err
	}
	if frames != nil && !frames.Encapsulated && syntax.Algorithm() != transfer.AlgorithmNone {
		dcmlog.Warn("compressed transfer syntax but PixelData is not encapsulated", "syntax", syntax.Name())
	}

	return &Result{Elements: elements, TransferSyntax: syntax, Frames: frames}, nil
}

// readTagAt reads a 4-byte (group, element) pair at offset.
func readTagAt(c *bytecursor.Cursor, offset int) (tag.Tag, int, error) {
	group, err := c.ReadU16(offset)
	if err != nil {
		return tag.Tag{}, offset, err
	}
	elem, err := c.ReadU16(offset + 2)
	if err != nil {
		return tag.Tag{}, offset, err
	}
	return tag.New(group, elem), offset + 4, nil
}

func readU32At(c *bytecursor.Cursor, offset int) (uint32, int, error) {
	v, err := c.ReadU32(offset)
	return v, offset + 4, err
}

func readU16At(c *bytecursor.Cursor, offset int) (uint16, int, error) {
	v, err := c.ReadU16(offset)
	return v, offset + 2, err
}

// readDataElement implements read_data_element. elements is
// the map accumulated so far in the current pass, consulted to resolve
// BitsAllocated/PixelRepresentation when pixel data arrives with explicit
// length.
func (p *Parser) readDataElement(c *bytecursor.Cursor, offset int, implicit bool, cs *charset.Decoder, elements *ElementMap) (*Element, int, error) {
	start := offset
	t, offset, err := readTagAt(c, offset)
	if err != nil {
		return nil, offset, err
	}

	if t.IsDelimiter() {
		vl, offset, err := readU32At(c, offset)
		if err != nil {
			return nil, offset, err
		}
		return &Element{Tag: t, VR: vr.NA, VL: DefinedVL(vl), StartOffset: start, EndOffset: offset}, offset, nil
	}

	var elemVR vr.VR
	var vl uint32

	if implicit {
		if entry, ok := p.dict.Lookup(t); ok {
			elemVR = entry.VR
		} else {
			elemVR = vr.UN
		}
		vl, offset, err = readU32At(c, offset)
		if err != nil {
			return nil, offset, err
		}
	} else {
		vrStr, err := c.ReadString(offset, 2)
		if err != nil {
			return nil, offset, err
		}
		offset += 2
		elemVR = vr.VR(vrStr)

		if elemVR.IsLongLength() {
			if _, err := c.ReadBytes(offset, 2); err != nil {
				return nil, offset, err
			}
			offset += 2
			vl, offset, err = readU32At(c, offset)
			if err != nil {
				return nil, offset, err
			}
		} else {
			var vl16 uint16
			vl16, offset, err = readU16At(c, offset)
			if err != nil {
				return nil, offset, err
			}
			vl = uint32(vl16)
		}
	}

	undefined := vl == 0xFFFFFFFF
	if undefined && elemVR != vr.SQ && t != tag.PixelData {
		return nil, offset, dcmerr.Newf(dcmerr.MalformedElement, "undefined length on non-sequence, non-pixel-data element %s (VR %s)", t, elemVR)
	}

	vlObj := DefinedVL(vl)
	if undefined {
		vlObj = UndefinedVL()
	}

	value, offset, err := p.readValue(c, offset, t, elemVR, vl, undefined, implicit, cs, elements)
	if err != nil {
		return nil, offset, err
	}

	if t == tag.PixelData && undefined {
		start += int(value.pixelDataStartAdjust)
		value.pixelDataStartAdjust = 0
	}

	return &Element{Tag: t, VR: elemVR, VL: vlObj, Value: value, StartOffset: start, EndOffset: offset}, offset, nil
}

// pixelDataStartAdjust is a private carry-channel from readValue's pixel
// item handling back to readDataElement, used only to advance
// StartOffset past the Basic Offset Table without widening Value's
// public surface.
func (p *Parser) readValue(c *bytecursor.Cursor, offset int, t tag.Tag, elemVR vr.VR, vl uint32, undefined, implicit bool, cs *charset.Decoder, elements *ElementMap) (Value, int, error) {
	switch {
	case t == tag.PixelData && undefined:
		fragments, botVL, offset, err := p.readPixelItemSequence(c, offset)
		if err != nil {
			return Value{}, offset, err
		}
		v := ValueFragments(fragments)
		v.pixelDataStartAdjust = int(botVL)
		return v, offset, nil

	case t == tag.PixelData && !undefined && isPixelBinaryVR(elemVR):
		if ba, ok := elements.GetInt(tag.BitsAllocated); ok && ((elemVR == vr.OW && ba == 8) || (elemVR == vr.OB && ba == 16)) {
			dcmlog.Warn("PixelData VR does not match BitsAllocated", "vr", string(elemVR), "bitsAllocated", ba)
		}
		return p.readNativePixelData(c, offset, int(vl), elements)

	case elemVR == vr.SQ:
		items, offset, err := p.readSequence(c, offset, implicit, int(vl), undefined, cs)
		if err != nil {
			return Value{}, offset, err
		}
		return ValueItems(items), offset, nil

	case elemVR == vr.OB:
		b, err := c.ReadBytes(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI8s(bytesToI8(b)), offset + int(vl), nil

	case elemVR == vr.OW:
		u, err := c.ReadI16Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI16s(u), offset + int(vl), nil

	case elemVR == vr.OF:
		f, err := c.ReadI32Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI32s(f), offset + int(vl), nil

	case elemVR == vr.OD:
		f, err := c.ReadF64Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueF64s(f), offset + int(vl), nil

	case elemVR == vr.UN:
		b, err := c.ReadBytes(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueU8s(append([]byte(nil), b...)), offset + int(vl), nil

	case elemVR == vr.US:
		u, err := c.ReadU16Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueU16s(u), offset + int(vl), nil

	case elemVR == vr.SS:
		s, err := c.ReadI16Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI16s(s), offset + int(vl), nil

	case elemVR == vr.UL:
		u, err := c.ReadU32Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueU32s(u), offset + int(vl), nil

	case elemVR == vr.SL:
		s, err := c.ReadI32Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI32s(s), offset + int(vl), nil

	case elemVR == vr.FL:
		f, err := c.ReadF32Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueF32s(f), offset + int(vl), nil

	case elemVR == vr.FD:
		f, err := c.ReadF64Array(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		return ValueF64s(f), offset + int(vl), nil

	case elemVR == vr.AT:
		n := int(vl) / 4
		pairs := make([]string, 0, n)
		for i := 0; i < n; i++ {
			g, err := c.ReadU16(offset + i*4)
			if err != nil {
				return Value{}, offset, err
			}
			e, err := c.ReadU16(offset + i*4 + 2)
			if err != nil {
				return Value{}, offset, err
			}
			pairs = append(pairs, fmt.Sprintf("(%04X,%04X)", g, e))
		}
		return ValueStrings(pairs), offset + int(vl), nil

	default:
		raw, err := c.ReadBytes(offset, int(vl))
		if err != nil {
			return Value{}, offset, err
		}
		var decoded string
		if elemVR.IsSpecialText() {
			decoded = cs.Decode(raw)
		} else {
			decoded = charset.DecodeASCII(raw)
		}
		decoded = strings.TrimRight(decoded, " \x00")
		parts := strings.Split(decoded, "\\")
		return ValueStrings(parts), offset + int(vl), nil
	}
}

func isPixelBinaryVR(v vr.VR) bool {
	return v == vr.OB || v == vr.OW || v == vr.OF || v == vr.OX
}

// readNativePixelData reads explicit-length Pixel Data as a typed array
// sized per BitsAllocated/PixelRepresentation.
func (p *Parser) readNativePixelData(c *bytecursor.Cursor, offset, byteLen int, elements *ElementMap) (Value, int, error) {
	bitsAllocated := 16
	if n, ok := elements.GetInt(tag.BitsAllocated); ok {
		bitsAllocated = n
	} else {
		dcmlog.Warn("BitsAllocated missing before PixelData, defaulting to 16")
	}
	signed := false
	if n, ok := elements.GetInt(tag.PixelRepresentation); ok {
		signed = n == 1
	}

	if bitsAllocated == 8 {
		b, err := c.ReadBytes(offset, byteLen)
		if err != nil {
			return Value{}, offset, err
		}
		if signed {
			return ValueI8s(bytesToI8(b)), offset + byteLen, nil
		}
		return ValueU8s(append([]byte(nil), b...)), offset + byteLen, nil
	}

	if signed {
		s, err := c.ReadI16Array(offset, byteLen)
		if err != nil {
			return Value{}, offset, err
		}
		return ValueI16s(s), offset + byteLen, nil
	}
	u, err := c.ReadU16Array(offset, byteLen)
	if err != nil {
		return Value{}, offset, err
	}
	return ValueU16s(u), offset + byteLen, nil
}

func bytesToI8(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}

// readSequence implements the ReadSequence state: repeat ReadItem until
// length is exhausted (explicit) or a Sequence-Delimitation Item arrives
// (undefined length).
func (p *Parser) readSequence(c *bytecursor.Cursor, offset int, implicit bool, vl int, undefined bool, cs *charset.Decoder) ([]*ElementMap, int, error) {
	var items []*ElementMap
	end := offset + vl

	for {
		if !undefined && offset >= end {
			break
		}
		item, next, isSeqDelim, err := p.readItem(c, offset, implicit, cs)
		if err != nil {
			return nil, offset, err
		}
		offset = next
		if isSeqDelim {
			break
		}
		items = append(items, item)
	}
	return items, offset, nil
}

// readItem implements ReadItem: read child elements until the item's
// explicit length is exhausted, or until an Item-Delimitation Item (for
// undefined-length items). A leading Sequence-Delimitation Item instead of
// an Item tag ends the enclosing sequence.
func (p *Parser) readItem(c *bytecursor.Cursor, offset int, implicit bool, cs *charset.Decoder) (*ElementMap, int, bool, error) {
	itemTag, offset, err := readTagAt(c, offset)
	if err != nil {
		return nil, offset, false, err
	}
	if itemTag == tag.SequenceDelimitationItem {
		_, offset, err := readU32At(c, offset)
		return nil, offset, true, err
	}
	if itemTag != tag.Item {
		return nil, offset, false, dcmerr.Newf(dcmerr.MalformedElement, "expected item tag, got %s", itemTag)
	}

	vl, offset, err := readU32At(c, offset)
	if err != nil {
		return nil, offset, false, err
	}

	itemMap := NewElementMap()
	if vl != 0xFFFFFFFF {
		end := offset + int(vl)
		for offset < end {
			elem, next, err := p.readDataElement(c, offset, implicit, cs, itemMap)
			if err != nil {
				return nil, offset, false, err
			}
			itemMap.Insert(elem)
			offset = next
		}
		return itemMap, offset, false, nil
	}

	for {
		save := offset
		peekTag, next, err := readTagAt(c, offset)
		if err != nil {
			return nil, offset, false, err
		}
		if peekTag == tag.ItemDelimitationItem {
			_, next, err := readU32At(c, next)
			return itemMap, next, false, err
		}
		offset = save
		elem, next, err := p.readDataElement(c, offset, implicit, cs, itemMap)
		if err != nil {
			return nil, offset, false, err
		}
		itemMap.Insert(elem)
		offset = next
	}
}

// readPixelItemSequence implements read_pixel_item_sequence: the first item
// is the Basic Offset Table (its bytes are not kept as a fragment);
// subsequent items up to the Sequence-Delimitation Item become fragments.
func (p *Parser) readPixelItemSequence(c *bytecursor.Cursor, offset int) ([][]byte, uint32, int, error) {
	itemTag, offset, err := readTagAt(c, offset)
	if err != nil {
		return nil, 0, offset, err
	}
	if itemTag != tag.Item {
		return nil, 0, offset, dcmerr.Newf(dcmerr.MalformedElement, "expected Basic Offset Table item, got %s", itemTag)
	}
	botVL, offset, err := readU32At(c, offset)
	if err != nil {
		return nil, 0, offset, err
	}
	if botVL > 0 {
		if _, err := c.ReadBytes(offset, int(botVL)); err != nil {
			return nil, 0, offset, err
		}
		offset += int(botVL)
	}

	var fragments [][]byte
	for {
		itemTag, next, err := readTagAt(c, offset)
		if err != nil {
			return nil, botVL, offset, err
		}
		if itemTag == tag.SequenceDelimitationItem {
			_, next, err := readU32At(c, next)
			return fragments, botVL, next, err
		}
		if itemTag != tag.Item {
			return nil, botVL, offset, dcmerr.Newf(dcmerr.MalformedElement, "expected fragment item, got %s", itemTag)
		}
		offset = next
		flen, next, err := readU32At(c, offset)
		if err != nil {
			return nil, botVL, offset, err
		}
		offset = next
		data, err := c.ReadBytes(offset, int(flen))
		if err != nil {
			return nil, botVL, offset, err
		}
		fragments = append(fragments, append([]byte(nil), data...))
		offset += int(flen)
	}
}
