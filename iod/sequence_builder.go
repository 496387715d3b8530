package iod

import (
	"fmt"

	"github.com/dicomkit/dicomkit/internal/dicom"
	"github.com/dicomkit/dicomkit/tag"
	"github.com/dicomkit/dicomkit/vr"
)

// SequenceBuilder accumulates item datasets for a single sequence element,
// deferring errors until Build so callers can chain AddItem calls fluently.
type SequenceBuilder struct {
	tag   tag.Tag
	items []*dicom.ElementMap
	errs  []error
}

// NewSequenceBuilder starts a sequence builder for tag t.
func NewSequenceBuilder(t tag.Tag) *SequenceBuilder {
	return &SequenceBuilder{tag: t}
}

// AddItem builds one item dataset from opts and appends it to the sequence.
func (b *SequenceBuilder) AddItem(opts ...Option) *SequenceBuilder {
	item, err := NewDataset(opts...)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("sequence %s item %d: %w", b.tag, len(b.items), err))
		return b
	}
	b.items = append(b.items, item)
	return b
}

// Err returns the first error encountered while building items, if any.
func (b *SequenceBuilder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs[0]
}

// Build returns the finished sequence element, or an error if any item
// failed to build.
func (b *SequenceBuilder) Build() (*dicom.Element, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	return &dicom.Element{Tag: b.tag, VR: vr.SQ, Value: dicom.ValueItems(b.items)}, nil
}

// Option returns a dataset Option that inserts the finished sequence,
// letting a SequenceBuilder compose directly into NewDataset's opts list.
func (b *SequenceBuilder) Option() Option {
	return func(elements *dicom.ElementMap) error {
		e, err := b.Build()
		if err != nil {
			return err
		}
		elements.Insert(e)
		return nil
	}
}
