// Package iod builds conforming DICOM datasets from typed Go structs,
// adapted from the prior pkg/dicos dataset/sequence builders and
// pkg/dicos/module package to target internal/dicom's ElementMap.
package iod

import (
	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/iod/module"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// Option configures an ElementMap during construction.
type Option func(*dicom.ElementMap) error

// NewDataset builds an ElementMap by applying opts in order.
func NewDataset(opts ...Option) (*dicom.ElementMap, error) {
	elements := dicom.NewElementMap()
	for _, opt := range opts {
		if err := opt(elements); err != nil {
			return nil, err
		}
	}
	return elements, nil
}

// WithElement inserts a single string-valued element.
func WithElement(t tag.Tag, v vr.VR, value string) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: t, VR: v, Value: dicom.ValueString(value)})
		return nil
	}
}

// WithModule inserts every element a module emits. Elements with an empty
// string value are still inserted at zero length rather than dropped: most
// of these attributes are Type 2, and a present, empty element is
// meaningfully different from an absent one.
func WithModule(m module.IODModule) Option {
	return func(elements *dicom.ElementMap) error {
		for _, e := range m.ToElements() {
			elements.Insert(e)
		}
		return nil
	}
}

// WithSequence inserts a sequence element whose items are pre-built
// ElementMaps, e.g. from SequenceBuilder.
func WithSequence(t tag.Tag, items ...*dicom.ElementMap) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: t, VR: vr.SQ, Value: dicom.ValueItems(items)})
		return nil
	}
}

// WithFileMeta inserts the File Meta identity elements every written
// dataset needs beyond what Writer synthesizes (ImplementationClassUID and
// ImplementationVersionName are the Writer's own job, not this one's).
func WithFileMeta(sopClassUID, sopInstanceUID, transferSyntaxUID string) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: tag.MediaStorageSOPClassUID, VR: vr.UI, Value: dicom.ValueString(sopClassUID)})
		elements.Insert(&dicom.Element{Tag: tag.MediaStorageSOPInstanceUID, VR: vr.UI, Value: dicom.ValueString(sopInstanceUID)})
		elements.Insert(&dicom.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicom.ValueString(transferSyntaxUID)})
		return nil
	}
}

// WithNativePixelData inserts uncompressed Rows x Columns x frames pixel
// data, picking OB for 8-bit or OW for higher bit depths.
func WithNativePixelData(rows, cols, bitsAllocated int, data []uint16) Option {
	return func(elements *dicom.ElementMap) error {
		elements.Insert(&dicom.Element{Tag: tag.Rows, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(rows)})})
		elements.Insert(&dicom.Element{Tag: tag.Columns, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(cols)})})
		elements.Insert(&dicom.Element{Tag: tag.BitsAllocated, VR: vr.US, Value: dicom.ValueU16s([]uint16{uint16(bitsAllocated)})})

		if bitsAllocated <= 8 {
			b := make([]byte, len(data))
			for i, v := range data {
				b[i] = byte(v)
			}
			elements.Insert(&dicom.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicom.ValueU8s(b)})
			return nil
		}
		elements.Insert(&dicom.Element{Tag: tag.PixelData, VR: vr.OW, Value: dicom.ValueU16s(data)})
		return nil
	}
}
