package dicom

import (
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// VL is an element's Value Length field. DICOM reserves the 32-bit value
// 0xFFFFFFFF to mean "undefined length, read until a delimiter item"
//, which VL models as a distinct state rather than overload
// the numeric 0xFFFFFFFF as if it were a real length.
type VL struct {
	undefined bool
	n         uint32
}

// DefinedVL wraps an explicit, known length.
func DefinedVL(n uint32) VL { return VL{n: n} }

// UndefinedVL is the sentinel length for undefined-length sequences, items,
// and encapsulated pixel data.
func UndefinedVL() VL { return VL{undefined: true} }

// IsUndefined reports whether this VL is the 0xFFFFFFFF sentinel.
func (l VL) IsUndefined() bool { return l.undefined }

// Len returns the explicit length and true, or (0, false) if undefined.
func (l VL) Len() (uint32, bool) {
	if l.undefined {
		return 0, false
	}
	return l.n, true
}

// Element is one parsed data element: its identity, VR, on-wire length, and
// decoded value, plus the byte range it occupied in the source buffer.
type Element struct {
	Tag   tag.Tag
	VR    vr.VR
	VL    VL
	Value Value

	StartOffset int
	EndOffset   int
}

// ElementMap is an insertion-ordered mapping from a Tag's canonical key to
// its Element. A plain map[Tag]*Element does not iterate in a stable
// order; ElementMap adds an explicit key list alongside the map to
// recover that guarantee.
type ElementMap struct {
	order []string
	byKey map[string]*Element
}

// NewElementMap returns an empty ElementMap.
func NewElementMap() *ElementMap {
	return &ElementMap{byKey: make(map[string]*Element)}
}

// Insert adds or replaces the element for e.Tag. A replace keeps the
// original insertion position.
func (m *ElementMap) Insert(e *Element) {
	key := e.Tag.Key()
	if _, exists := m.byKey[key]; !exists {
		m.order = append(m.order, key)
	}
	m.byKey[key] = e
}

// Get returns the element for t, if present.
func (m *ElementMap) Get(t tag.Tag) (*Element, bool) {
	e, ok := m.byKey[t.Key()]
	return e, ok
}

// MustGet returns the element for t, or nil if absent.
func (m *ElementMap) MustGet(t tag.Tag) *Element {
	e, _ := m.byKey[t.Key()]
	return e
}

// Delete removes t's element, if present.
func (m *ElementMap) Delete(t tag.Tag) {
	key := t.Key()
	if _, ok := m.byKey[key]; !ok {
		return
	}
	delete(m.byKey, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of elements held.
func (m *ElementMap) Len() int { return len(m.order) }

// Tags returns every tag in insertion order.
func (m *ElementMap) Tags() []tag.Tag {
	out := make([]tag.Tag, 0, len(m.order))
	for _, k := range m.order {
		if t, ok := tag.FromKey(k); ok {
			out = append(out, t)
		}
	}
	return out
}

// Elements returns every element in insertion order.
func (m *ElementMap) Elements() []*Element {
	out := make([]*Element, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.byKey[k])
	}
	return out
}

// Range calls fn for each element in insertion order, stopping early if fn
// returns false.
func (m *ElementMap) Range(fn func(t tag.Tag, e *Element) bool) {
	for _, k := range m.order {
		t, ok := tag.FromKey(k)
		if !ok {
			continue
		}
		if !fn(t, m.byKey[k]) {
			return
		}
	}
}

// GetString returns the first string value stored at t.
func (m *ElementMap) GetString(t tag.Tag) (string, bool) {
	e, ok := m.Get(t)
	if !ok {
		return "", false
	}
	ss, ok := e.Value.Strings()
	if !ok || len(ss) == 0 {
		return "", false
	}
	return ss[0], true
}

// GetStrings returns every string value stored at t (multi-valued VM).
func (m *ElementMap) GetStrings(t tag.Tag) ([]string, bool) {
	e, ok := m.Get(t)
	if !ok {
		return nil, false
	}
	return e.Value.Strings()
}

// GetInt returns t's value coerced to an int.
func (m *ElementMap) GetInt(t tag.Tag) (int, bool) {
	e, ok := m.Get(t)
	if !ok {
		return 0, false
	}
	return e.Value.Int()
}

// GetFloats returns t's value coerced to a []float64.
func (m *ElementMap) GetFloats(t tag.Tag) ([]float64, bool) {
	e, ok := m.Get(t)
	if !ok {
		return nil, false
	}
	return e.Value.Float64s()
}

// GetBytes returns t's raw byte value (OB/OW/UN/pixel data).
func (m *ElementMap) GetBytes(t tag.Tag) ([]byte, bool) {
	e, ok := m.Get(t)
	if !ok {
		return nil, false
	}
	return e.Value.Bytes()
}

// GetSequence returns t's nested item element maps.
func (m *ElementMap) GetSequence(t tag.Tag) ([]*ElementMap, bool) {
	e, ok := m.Get(t)
	if !ok {
		return nil, false
	}
	return e.Value.Items()
}
