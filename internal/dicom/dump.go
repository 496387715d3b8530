package dicom

import (
	"encoding/json"
	"fmt"
	"strings"
)

// String renders e as a single human-readable line, for CLI dump output.
func (e *Element) String() string {
	name := e.Tag.LookupName()
	if name != "" {
		name = " " + name
	}
	return fmt.Sprintf("[%s] %s%s: %s", e.Tag, e.VR, name, e.Value.describe())
}

func (v Value) describe() string {
	switch v.Kind {
	case KindItems:
		items, _ := v.Items()
		return fmt.Sprintf("Sequence (%d items)", len(items))
	case KindFragments:
		frags, _ := v.Fragments()
		return fmt.Sprintf("Pixel Data (%d fragments)", len(frags))
	case KindBytes:
		b, _ := v.Bytes()
		if len(b) > 20 {
			return fmt.Sprintf("Binary Data (%d bytes)", len(b))
		}
		return fmt.Sprintf("%v", b)
	case KindU8s:
		b, _ := v.U8s()
		if len(b) > 20 {
			return fmt.Sprintf("Binary Data (%d bytes)", len(b))
		}
		return fmt.Sprintf("%v", b)
	case KindI16s, KindU16s, KindI32s, KindU32s, KindF32s, KindF64s:
		if v.Len() > 10 {
			return fmt.Sprintf("Array of %d values", v.Len())
		}
		return v.numericString()
	default:
		ss, _ := v.Strings()
		return strings.Join(ss, "\\")
	}
}

func (v Value) numericString() string {
	switch v.Kind {
	case KindI16s:
		s, _ := v.I16s()
		return fmt.Sprintf("%v", s)
	case KindU16s:
		s, _ := v.U16s()
		return fmt.Sprintf("%v", s)
	case KindI32s:
		s, _ := v.I32s()
		return fmt.Sprintf("%v", s)
	case KindU32s:
		s, _ := v.U32s()
		return fmt.Sprintf("%v", s)
	case KindF32s:
		s, _ := v.F32s()
		return fmt.Sprintf("%v", s)
	case KindF64s:
		s, _ := v.F64s()
		return fmt.Sprintf("%v", s)
	default:
		return ""
	}
}

// MarshalJSON gives Element a compact JSON shape for tooling that wants a
// structured dump rather than the text one Dump produces.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Tag   string `json:"tag"`
		Name  string `json:"name,omitempty"`
		VR    string `json:"vr"`
		Value string `json:"value"`
	}{
		Tag:   e.Tag.String(),
		Name:  e.Tag.LookupName(),
		VR:    string(e.VR),
		Value: e.Value.describe(),
	})
}

// Dump renders every element of elements as one line each, in insertion
// order, for the dcmctl dump command.
func Dump(elements *ElementMap) string {
	var b strings.Builder
	for _, e := range elements.Elements() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
