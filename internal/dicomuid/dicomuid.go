// Package dicomuid generates DICOM UIDs (dotted-decimal OIDs) backed by
// github.com/google/uuid, following DICOM PS3.5 Annex B's "2.25." root:
// a UUID's 128 bits read as a big-endian integer under that root is a
// valid, collision-resistant UID without a registered organizational root.
package dicomuid

import (
	"math/big"

	"github.com/google/uuid"

	"github.com/dicomkit/dicomkit/pkg/util"
)

const root = "2.25."

func fromUUID(u uuid.UUID) string {
	var n big.Int
	n.SetBytes(u[:])
	return root + n.String()
}

// New mints a fresh random UID, suitable for ImplementationClassUID or any
// newly authored SOP/Series/Study instance UID.
func New() string {
	return fromUUID(uuid.New())
}

// Deterministic derives a stable UID from seed, so the same input (e.g. a
// builder's accumulated field set) always yields the same UID across runs.
func Deterministic(seed any) string {
	s := util.HashUUID(seed)
	if s == "" {
		return New()
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return New()
	}
	return fromUUID(u)
}
