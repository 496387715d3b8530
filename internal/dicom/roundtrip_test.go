package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/transfer"
	"github.com/dicomkit/dicomkit/vr"
)

// newFileMeta builds the minimum File Meta group every test dataset needs:
// SOP identity plus the Transfer Syntax the data set below it is encoded
// with. FileMetaInformationGroupLength is recomputed by the Writer, so it
// is intentionally not inserted here.
func newFileMeta(transferSyntaxUID string) *ElementMap {
	m := NewElementMap()
	m.Insert(&Element{Tag: tag.MediaStorageSOPClassUID, VR: vr.UI, Value: ValueString("1.2.840.10008.5.1.4.1.1.2")})
	m.Insert(&Element{Tag: tag.MediaStorageSOPInstanceUID, VR: vr.UI, Value: ValueString("1.2.3.4.5.6.7.8.9")})
	m.Insert(&Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: ValueString(transferSyntaxUID)})
	return m
}

// TestRoundTrip_MinimalImplicitLE1x1Monochrome is scenario S1: the smallest
// legal file, Implicit VR Little Endian, a single 1x1 16-bit monochrome
// frame, written then parsed back with the same transfer syntax, Rows and
// pixel value.
func TestRoundTrip_MinimalImplicitLE1x1Monochrome(t *testing.T) {
	elements := newFileMeta(string(transfer.ImplicitVRLittleEndian))
	elements.Insert(&Element{Tag: tag.Rows, VR: vr.US, Value: ValueU16s([]uint16{1})})
	elements.Insert(&Element{Tag: tag.Columns, VR: vr.US, Value: ValueU16s([]uint16{1})})
	elements.Insert(&Element{Tag: tag.SamplesPerPixel, VR: vr.US, Value: ValueU16s([]uint16{1})})
	elements.Insert(&Element{Tag: tag.BitsAllocated, VR: vr.US, Value: ValueU16s([]uint16{16})})
	elements.Insert(&Element{Tag: tag.PixelRepresentation, VR: vr.US, Value: ValueU16s([]uint16{0})})
	elements.Insert(&Element{Tag: tag.PixelData, VR: vr.OW, Value: ValueU16s([]uint16{4095})})

	w := NewWriter()
	buf, err := w.Write(elements, make([]byte, 128))
	require.NoError(t, err)

	p := NewParser()
	result, err := p.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, transfer.ImplicitVRLittleEndian, result.TransferSyntax)

	rows, ok := result.Elements.GetInt(tag.Rows)
	require.True(t, ok)
	assert.Equal(t, 1, rows)

	require.NotNil(t, result.Frames)
	assert.Equal(t, 1, result.Frames.FrameCount)
	require.Len(t, result.Frames.NativeU16, 1)
	assert.Equal(t, []uint16{4095}, result.Frames.NativeU16[0])
}

// TestRoundTrip_ExplicitLENestedSequence is scenario S2: Explicit VR Little
// Endian with a nested sequence, verifying the written item length exactly
// bounds its own elements (no drift once reparsed).
func TestRoundTrip_ExplicitLENestedSequence(t *testing.T) {
	elements := newFileMeta(string(transfer.ExplicitVRLittleEndian))

	item := NewElementMap()
	item.Insert(&Element{Tag: tag.ReferencedSOPClassUID, VR: vr.UI, Value: ValueString("1.2.840.10008.5.1.4.1.1.2")})
	item.Insert(&Element{Tag: tag.ReferencedSOPInstanceUID, VR: vr.UI, Value: ValueString("9.8.7.6.5.4.3.2.1")})

	elements.Insert(&Element{Tag: tag.ReferencedImageSequence, VR: vr.SQ, Value: ValueItems([]*ElementMap{item})})
	elements.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Doe^Jane")})

	w := NewWriter()
	buf, err := w.Write(elements, make([]byte, 128))
	require.NoError(t, err)

	p := NewParser()
	result, err := p.Parse(buf)
	require.NoError(t, err)

	seq, ok := result.Elements.GetSequence(tag.ReferencedImageSequence)
	require.True(t, ok)
	require.Len(t, seq, 1)

	uid, ok := seq[0].GetString(tag.ReferencedSOPClassUID)
	require.True(t, ok)
	assert.Equal(t, "1.2.840.10008.5.1.4.1.1.2", uid)

	name, ok := result.Elements.GetString(tag.PatientName)
	require.True(t, ok)
	assert.Equal(t, "Doe^Jane", name, "the element following the sequence must parse at the correct offset")
}

// TestRoundTrip_EncapsulatedFragmentGrouping is scenario S3: an encapsulated,
// multi-frame Pixel Data element with more fragments than frames groups
// fragments evenly per frame.
func TestRoundTrip_EncapsulatedFragmentGrouping(t *testing.T) {
	elements := newFileMeta(string(transfer.JPEGBaseline))
	elements.Insert(&Element{Tag: tag.Rows, VR: vr.US, Value: ValueU16s([]uint16{16})})
	elements.Insert(&Element{Tag: tag.Columns, VR: vr.US, Value: ValueU16s([]uint16{16})})
	elements.Insert(&Element{Tag: tag.NumberOfFrames, VR: vr.IS, Value: ValueString("2")})

	fragments := [][]byte{{0xDE, 0xAD}, {0xBE, 0xEF}, {0xCA, 0xFE}, {0xBA, 0xBE}}
	elements.Insert(&Element{Tag: tag.PixelData, VR: vr.OB, VL: UndefinedVL(), Value: ValueFragments(fragments)})

	w := NewWriter()
	buf, err := w.Write(elements, make([]byte, 128))
	require.NoError(t, err)

	p := NewParser()
	result, err := p.Parse(buf)
	require.NoError(t, err)

	require.NotNil(t, result.Frames)
	assert.True(t, result.Frames.Encapsulated)
	assert.Equal(t, 2, result.Frames.FrameCount)
	require.Len(t, result.Frames.EncapsulatedFrames, 2)
	assert.Equal(t, [][]byte{{0xDE, 0xAD}, {0xBE, 0xEF}}, result.Frames.EncapsulatedFrames[0])
	assert.Equal(t, [][]byte{{0xCA, 0xFE}, {0xBA, 0xBE}}, result.Frames.EncapsulatedFrames[1])
}

// TestRoundTrip_BigEndianPixelDataByteFlip is scenario S4: Explicit VR Big
// Endian pixel values survive the write/parse round trip without losing
// their byte order.
func TestRoundTrip_BigEndianPixelDataByteFlip(t *testing.T) {
	elements := newFileMeta(string(transfer.ExplicitVRBigEndian))
	elements.Insert(&Element{Tag: tag.Rows, VR: vr.US, Value: ValueU16s([]uint16{2})})
	elements.Insert(&Element{Tag: tag.Columns, VR: vr.US, Value: ValueU16s([]uint16{2})})
	elements.Insert(&Element{Tag: tag.SamplesPerPixel, VR: vr.US, Value: ValueU16s([]uint16{1})})
	elements.Insert(&Element{Tag: tag.BitsAllocated, VR: vr.US, Value: ValueU16s([]uint16{16})})
	elements.Insert(&Element{Tag: tag.PixelRepresentation, VR: vr.US, Value: ValueU16s([]uint16{0})})
	values := []uint16{0x0102, 0x0304, 0xABCD, 0xFFFE}
	elements.Insert(&Element{Tag: tag.PixelData, VR: vr.OW, Value: ValueU16s(values)})

	w := NewWriter()
	buf, err := w.Write(elements, make([]byte, 128))
	require.NoError(t, err)

	p := NewParser()
	result, err := p.Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, transfer.ExplicitVRBigEndian, result.TransferSyntax)

	require.NotNil(t, result.Frames)
	require.Len(t, result.Frames.NativeU16, 1)
	assert.Equal(t, values, result.Frames.NativeU16[0])
}

// TestRoundTrip_AnonymizationRulePriority is scenario S6: keyword and
// tag-key rules take precedence over the default rule.
func TestRoundTrip_AnonymizationRulePriority(t *testing.T) {
	elements := newFileMeta(string(transfer.ExplicitVRLittleEndian))
	elements.Insert(&Element{Tag: tag.PatientName, VR: vr.PN, Value: ValueString("Doe^Jane")})
	elements.Insert(&Element{Tag: tag.PatientID, VR: vr.LO, Value: ValueString("P001")})
	elements.Insert(&Element{Tag: tag.StudyDescription, VR: vr.LO, Value: ValueString("Chest CT")})

	rules := NewRules(nil)
	rules.ForKeyword("PatientName", Rule{Action: ActionReplace, Replace: "ANON^ANON"})
	rules.ForTag(tag.PatientID, Rule{Action: ActionRemove})
	rules.Default(Rule{Action: ActionCopy})

	w := NewWriter(WithRules(rules))
	buf, err := w.Write(elements, make([]byte, 128))
	require.NoError(t, err)

	p := NewParser()
	result, err := p.Parse(buf)
	require.NoError(t, err)

	name, ok := result.Elements.GetString(tag.PatientName)
	require.True(t, ok)
	assert.Equal(t, "ANON^ANON", name)

	_, ok = result.Elements.Get(tag.PatientID)
	assert.False(t, ok, "PatientID must be removed, not merely cleared")

	desc, ok := result.Elements.GetString(tag.StudyDescription)
	require.True(t, ok)
	assert.Equal(t, "Chest CT", desc, "unmatched elements fall through to the default Copy rule")
}
