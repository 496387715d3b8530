package iod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicomkit/dicomkit/tag"
)

func TestNewCTImage_DefaultsHounsfieldUnitIdentity(t *testing.T) {
	ct := NewCTImage()
	assert.Equal(t, SOPClassCTImageStorage, ct.SOPCommon.SOPClassUID)
	assert.Equal(t, "CT", ct.Series.Modality)
	assert.Equal(t, 1.0, ct.RescaleSlope)
	assert.Equal(t, "HU", ct.RescaleType)
	assert.Equal(t, 16, ct.BitsAllocated)
	assert.Equal(t, 1, ct.NumberOfFrames)
	assert.NotEmpty(t, ct.FrameOfReference.FrameOfReferenceUID)
}

func TestCTImage_BuildProducesCompleteDataset(t *testing.T) {
	ct := NewCTImage()
	ct.Patient.PatientID = "P001"
	ct.Rows, ct.Columns = 2, 2
	ct.PixelData = []uint16{10, 20, 30, 40}

	elements, err := ct.Build()
	require.NoError(t, err)

	modality, ok := elements.GetString(tag.Modality)
	require.True(t, ok)
	assert.Equal(t, "CT", modality)

	photometric, ok := elements.GetString(tag.PhotometricInterpretation)
	require.True(t, ok)
	assert.Equal(t, "MONOCHROME2", photometric)

	rescaleSlope, ok := elements.GetString(tag.RescaleSlope)
	require.True(t, ok)
	assert.Equal(t, "1", rescaleSlope)

	_, ok = elements.Get(tag.PixelData)
	assert.True(t, ok)

	// NumberOfFrames is omitted when it's 1 (the default, single-frame case).
	_, ok = elements.Get(tag.NumberOfFrames)
	assert.False(t, ok)
}

func TestCTImage_BuildEmitsNumberOfFramesWhenMultiFrame(t *testing.T) {
	ct := NewCTImage()
	ct.NumberOfFrames = 3
	ct.Rows, ct.Columns = 2, 2
	ct.PixelData = make([]uint16, 2*2*3)

	elements, err := ct.Build()
	require.NoError(t, err)

	n, ok := elements.GetInt(tag.NumberOfFrames)
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestCTImage_BuildOmitsOptionalZeroValuedFields(t *testing.T) {
	ct := NewCTImage()
	ct.Rows, ct.Columns = 1, 1
	ct.PixelData = []uint16{1}

	elements, err := ct.Build()
	require.NoError(t, err)

	_, ok := elements.Get(tag.KVP)
	assert.False(t, ok, "KVP is only inserted when non-zero")
	_, ok = elements.Get(tag.DataCollectionDiameter)
	assert.False(t, ok)
	_, ok = elements.Get(tag.ConvolutionKernel)
	assert.False(t, ok)
}
