package iod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicomkit/dicomkit/tag"
)

func TestNewDXImage_DefaultsPresentationIntent(t *testing.T) {
	dx := NewDXImage()
	assert.Equal(t, SOPClassDXImageStorage, dx.SOPCommon.SOPClassUID)
	assert.Equal(t, "DX", dx.Series.Modality)
	assert.Equal(t, "PRESENTATION", dx.PresentationIntentType)
	assert.Equal(t, 16, dx.BitsAllocated)
}

func TestDXImage_BuildProducesCompleteDataset(t *testing.T) {
	dx := NewDXImage()
	dx.Rows, dx.Columns = 2, 2
	dx.PixelData = []uint16{1, 2, 3, 4}

	elements, err := dx.Build()
	require.NoError(t, err)

	modality, ok := elements.GetString(tag.Modality)
	require.True(t, ok)
	assert.Equal(t, "DX", modality)

	intent, ok := elements.GetString(tag.PresentationIntentType)
	require.True(t, ok)
	assert.Equal(t, "PRESENTATION", intent)

	_, ok = elements.Get(tag.PixelData)
	assert.True(t, ok)
}

func TestDXImage_BuildOmitsPresentationIntentWhenEmpty(t *testing.T) {
	dx := NewDXImage()
	dx.PresentationIntentType = ""
	dx.Rows, dx.Columns = 1, 1
	dx.PixelData = []uint16{1}

	elements, err := dx.Build()
	require.NoError(t, err)
	_, ok := elements.Get(tag.PresentationIntentType)
	assert.False(t, ok)
}
