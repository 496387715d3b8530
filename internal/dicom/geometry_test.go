package dicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGeometry_WorldToIndexIsExactInverse pins Open Question #1: the
// mapping from voxel index to world space and back is an exact algebraic
// inverse, with no rounding or clamping, for any point expressible in the
// grid's own basis.
func TestGeometry_WorldToIndexIsExactInverse(t *testing.T) {
	g := &Geometry{
		Origins:     []Point3{{10, 20, 30}, {10, 20, 35}},
		Size:        Size{Columns: 64, Rows: 64, Slices: 2},
		Spacing:     Spacing{Column: 0.5, Row: 0.5, Slice: 5},
		Orientation: IdentityOrientation(),
	}

	for _, k := range []int{0, 1} {
		for _, idx := range [][2]int{{0, 0}, {3, 7}, {63, 63}} {
			i, j := idx[0], idx[1]
			world := g.IndexToWorld(i, j, k)
			gotI, gotJ := g.WorldToIndex(world, k)
			assert.InDelta(t, float64(i), gotI, 1e-9)
			assert.InDelta(t, float64(j), gotJ, 1e-9)
		}
	}
}

// TestGeometry_WorldToIndexZeroSpacingIsSafe exercises the explicit
// zero-spacing guard: a degenerate grid must not divide by zero.
func TestGeometry_WorldToIndexZeroSpacingIsSafe(t *testing.T) {
	g := &Geometry{
		Origins:     []Point3{{0, 0, 0}},
		Spacing:     Spacing{},
		Orientation: IdentityOrientation(),
	}
	i, j := g.WorldToIndex(Point3{5, 5, 5}, 0)
	assert.Equal(t, 0.0, i)
	assert.Equal(t, 0.0, j)
}

// TestGeometry_SliceIndexNearestOriginPolicy exercises append_slice's
// insertion rule: the nearest existing origin decides the neighbor, and the
// orientation normal's sign decides before-or-after.
func TestGeometry_SliceIndexNearestOriginPolicy(t *testing.T) {
	g := &Geometry{
		Origins:     []Point3{{0, 0, 0}, {0, 0, 10}, {0, 0, 20}},
		Orientation: IdentityOrientation(),
	}

	assert.Equal(t, 0, g.SliceIndex(Point3{0, 0, -5}), "before the first slice")
	assert.Equal(t, 3, g.SliceIndex(Point3{0, 0, 25}), "after the last slice")
	assert.Equal(t, 2, g.SliceIndex(Point3{0, 0, 15}), "equidistant from slices 1 and 2, ties favor the lower index, placed after it")
}

func TestGeometry_SliceIndexEmptyOrigins(t *testing.T) {
	g := &Geometry{Orientation: IdentityOrientation()}
	assert.Equal(t, 0, g.SliceIndex(Point3{1, 2, 3}))
}
