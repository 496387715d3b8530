package dicom

import (
	"fmt"
	"strings"
)

// sscanTrimmed parses a whitespace-trimmed DS/IS string value into dst,
// tolerating the padding spaces DICOM string VRs use to reach even length.
func sscanTrimmed(s string, dst any) (int, error) {
	s = strings.TrimSpace(s)
	switch d := dst.(type) {
	case *int:
		return fmt.Sscan(s, d)
	case *float64:
		return fmt.Sscan(s, d)
	default:
		return fmt.Sscan(s, dst)
	}
}

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindBytes Kind = iota
	KindI8s
	KindU8s
	KindI16s
	KindU16s
	KindI32s
	KindU32s
	KindF32s
	KindF64s
	KindStrings
	KindItems
	KindFragments
)

// Value is a tagged union over every shape an Element's parsed value can
// take. Exactly one field is meaningful, selected by Kind. This replaces
// the original engine's untyped `interface{}` Element.Value with an explicit
// variant.
type Value struct {
	Kind Kind

	bytes     []byte
	i8s       []int8
	u8s       []uint8
	i16s      []int16
	u16s      []uint16
	i32s      []int32
	u32s      []uint32
	f32s      []float32
	f64s      []float64
	strings   []string
	items     []*ElementMap
	fragments [][]byte

	// pixelDataStartAdjust carries the Basic Offset Table length back to
	// the caller that constructs the owning Element, so its StartOffset can
	// be advanced past the BOT. Never meaningful outside that single call.
	pixelDataStartAdjust int
}

func ValueBytes(b []byte) Value         { return Value{Kind: KindBytes, bytes: b} }
func ValueI8s(v []int8) Value           { return Value{Kind: KindI8s, i8s: v} }
func ValueU8s(v []uint8) Value          { return Value{Kind: KindU8s, u8s: v} }
func ValueI16s(v []int16) Value         { return Value{Kind: KindI16s, i16s: v} }
func ValueU16s(v []uint16) Value        { return Value{Kind: KindU16s, u16s: v} }
func ValueI32s(v []int32) Value         { return Value{Kind: KindI32s, i32s: v} }
func ValueU32s(v []uint32) Value        { return Value{Kind: KindU32s, u32s: v} }
func ValueF32s(v []float32) Value       { return Value{Kind: KindF32s, f32s: v} }
func ValueF64s(v []float64) Value       { return Value{Kind: KindF64s, f64s: v} }
func ValueStrings(v []string) Value     { return Value{Kind: KindStrings, strings: v} }
func ValueString(s string) Value        { return Value{Kind: KindStrings, strings: []string{s}} }
func ValueItems(v []*ElementMap) Value  { return Value{Kind: KindItems, items: v} }
func ValueFragments(v [][]byte) Value   { return Value{Kind: KindFragments, fragments: v} }

func (v Value) Bytes() ([]byte, bool)         { return v.bytes, v.Kind == KindBytes }
func (v Value) I8s() ([]int8, bool)           { return v.i8s, v.Kind == KindI8s }
func (v Value) U8s() ([]uint8, bool)          { return v.u8s, v.Kind == KindU8s }
func (v Value) I16s() ([]int16, bool)         { return v.i16s, v.Kind == KindI16s }
func (v Value) U16s() ([]uint16, bool)        { return v.u16s, v.Kind == KindU16s }
func (v Value) I32s() ([]int32, bool)         { return v.i32s, v.Kind == KindI32s }
func (v Value) U32s() ([]uint32, bool)        { return v.u32s, v.Kind == KindU32s }
func (v Value) F32s() ([]float32, bool)       { return v.f32s, v.Kind == KindF32s }
func (v Value) F64s() ([]float64, bool)       { return v.f64s, v.Kind == KindF64s }
func (v Value) Strings() ([]string, bool)     { return v.strings, v.Kind == KindStrings }
func (v Value) Items() ([]*ElementMap, bool)  { return v.items, v.Kind == KindItems }
func (v Value) Fragments() ([][]byte, bool)   { return v.fragments, v.Kind == KindFragments }

// String returns the first string value, or "" if the variant is not
// KindStrings or is empty.
func (v Value) String() string {
	if v.Kind != KindStrings || len(v.strings) == 0 {
		return ""
	}
	return v.strings[0]
}

// Int returns the first value coerced to an int, covering the 16- and
// 32-bit integer variants and the IS/DS string encoding; 8-bit, float and
// non-numeric variants report false.
func (v Value) Int() (int, bool) {
	switch v.Kind {
	case KindU16s:
		if len(v.u16s) > 0 {
			return int(v.u16s[0]), true
		}
	case KindI16s:
		if len(v.i16s) > 0 {
			return int(v.i16s[0]), true
		}
	case KindU32s:
		if len(v.u32s) > 0 {
			return int(v.u32s[0]), true
		}
	case KindI32s:
		if len(v.i32s) > 0 {
			return int(v.i32s[0]), true
		}
	case KindStrings:
		if len(v.strings) > 0 {
			var n int
			if _, err := sscanTrimmed(v.strings[0], &n); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// Float64s returns the FL/FD float variants widened to float64, or the DS
// string encoding parsed; integer variants report false.
func (v Value) Float64s() ([]float64, bool) {
	switch v.Kind {
	case KindF64s:
		return v.f64s, true
	case KindF32s:
		out := make([]float64, len(v.f32s))
		for i, f := range v.f32s {
			out[i] = float64(f)
		}
		return out, true
	case KindStrings:
		out := make([]float64, 0, len(v.strings))
		for _, s := range v.strings {
			var f float64
			if _, err := sscanTrimmed(s, &f); err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

// Len returns the element count of whichever variant is active.
func (v Value) Len() int {
	switch v.Kind {
	case KindBytes:
		return len(v.bytes)
	case KindI8s:
		return len(v.i8s)
	case KindU8s:
		return len(v.u8s)
	case KindI16s:
		return len(v.i16s)
	case KindU16s:
		return len(v.u16s)
	case KindI32s:
		return len(v.i32s)
	case KindU32s:
		return len(v.u32s)
	case KindF32s:
		return len(v.f32s)
	case KindF64s:
		return len(v.f64s)
	case KindStrings:
		return len(v.strings)
	case KindItems:
		return len(v.items)
	case KindFragments:
		return len(v.fragments)
	}
	return 0
}
