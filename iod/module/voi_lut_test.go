package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicomkit/dicomkit/tag"
)

func TestNewVOILUTForCT_ReturnsFourStandardWindows(t *testing.T) {
	m := NewVOILUTForCT()
	require.Len(t, m.Windows, 4)
	assert.Equal(t, "SOFT_TISSUE", m.Windows[0].Explanation)
	assert.Equal(t, "LINEAR", m.VOILUTFunction)
}

func TestNewVOILUTForDX_ReturnsFullRangeDefault(t *testing.T) {
	m := NewVOILUTForDX()
	require.Len(t, m.Windows, 1)
	assert.Equal(t, 32768.0, m.Windows[0].Center)
	assert.Equal(t, 65535.0, m.Windows[0].Width)
}

func TestVOILUT_ToElementsReturnsNilWhenNoWindows(t *testing.T) {
	m := &VOILUT{}
	assert.Nil(t, m.ToElements())
}

func TestVOILUT_ToElementsJoinsCentersAndWidths(t *testing.T) {
	m := &VOILUT{
		Windows: []WindowLevel{
			{Center: 40, Width: 400, Explanation: "SOFT_TISSUE"},
			{Center: 400, Width: 2000, Explanation: "BONE"},
		},
		VOILUTFunction: "LINEAR",
	}
	elements := m.ToElements()
	require.Len(t, elements, 3, "centers, widths, and explanations (LINEAR function is omitted)")

	centers, ok := elements[0].Value.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"40", "400"}, centers)

	widths, ok := elements[1].Value.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"400", "2000"}, widths)

	assert.Equal(t, tag.WindowCenterWidthExplanation, elements[2].Tag)
	explanations, ok := elements[2].Value.Strings()
	require.True(t, ok)
	assert.Equal(t, []string{"SOFT_TISSUE", "BONE"}, explanations)
}

func TestVOILUT_ToElementsOmitsExplanationsWhenAllEmpty(t *testing.T) {
	m := &VOILUT{Windows: []WindowLevel{{Center: 40, Width: 400}}}
	elements := m.ToElements()
	require.Len(t, elements, 2)
}

func TestVOILUT_ToElementsEmitsNonLinearFunction(t *testing.T) {
	m := &VOILUT{
		Windows:        []WindowLevel{{Center: 40, Width: 400}},
		VOILUTFunction: "SIGMOID",
	}
	elements := m.ToElements()
	require.Len(t, elements, 3)
	assert.Equal(t, tag.VOILUTFunction, elements[2].Tag)
	assert.Equal(t, "SIGMOID", elements[2].Value.String())
}
