package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

func TestVL_DefinedAndUndefined(t *testing.T) {
	defined := DefinedVL(42)
	n, ok := defined.Len()
	require.True(t, ok)
	assert.Equal(t, uint32(42), n)
	assert.False(t, defined.IsUndefined())

	undefined := UndefinedVL()
	_, ok = undefined.Len()
	assert.False(t, ok)
	assert.True(t, undefined.IsUndefined())
}

func TestElementMap_InsertionOrderPreserved(t *testing.T) {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Doe^Jane")})
	m.Insert(&Element{Tag: tag.PatientID, VR: vr.LO, Value: ValueString("P001")})
	m.Insert(&Element{Tag: tag.Modality, VR: vr.CS, Value: ValueString("CT")})

	tags := m.Tags()
	require.Len(t, tags, 3)
	assert.Equal(t, tag.PatientName, tags[0])
	assert.Equal(t, tag.PatientID, tags[1])
	assert.Equal(t, tag.Modality, tags[2])
}

func TestElementMap_ReplaceKeepsPosition(t *testing.T) {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("First")})
	m.Insert(&Element{Tag: tag.PatientID, VR: vr.LO, Value: ValueString("P001")})
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Second")})

	tags := m.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, tag.PatientName, tags[0], "replacing an existing tag must not move it to the end")

	e, ok := m.Get(tag.PatientName)
	require.True(t, ok)
	assert.Equal(t, "Second", e.Value.String())
}

func TestElementMap_Delete(t *testing.T) {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Doe^Jane")})
	m.Insert(&Element{Tag: tag.PatientID, VR: vr.LO, Value: ValueString("P001")})

	m.Delete(tag.PatientName)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Get(tag.PatientName)
	assert.False(t, ok)

	m.Delete(tag.PatientName)
	assert.Equal(t, 1, m.Len(), "deleting an absent tag is a no-op")
}

func TestElementMap_TypedGetters(t *testing.T) {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.Rows, VR: vr.US, Value: ValueU16s([]uint16{512})})
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Doe^Jane")})
	m.Insert(&Element{Tag: tag.RescaleSlope, VR: vr.DS, Value: ValueStrings([]string{"1.0"})})

	rows, ok := m.GetInt(tag.Rows)
	require.True(t, ok)
	assert.Equal(t, 512, rows)

	name, ok := m.GetString(tag.PatientName)
	require.True(t, ok)
	assert.Equal(t, "Doe^Jane", name)

	slope, ok := m.GetFloats(tag.RescaleSlope)
	require.True(t, ok)
	assert.Equal(t, []float64{1.0}, slope)

	_, ok = m.GetInt(tag.PatientID)
	assert.False(t, ok, "absent tag must report false")
}

func TestElementMap_Range_StopsEarly(t *testing.T) {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("A")})
	m.Insert(&Element{Tag: tag.PatientID, VR: vr.LO, Value: ValueString("B")})
	m.Insert(&Element{Tag: tag.Modality, VR: vr.CS, Value: ValueString("C")})

	var seen []tag.Tag
	m.Range(func(t tag.Tag, e *Element) bool {
		seen = append(seen, t)
		return len(seen) < 2
	})
	assert.Len(t, seen, 2)
}
