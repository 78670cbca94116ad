package omf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
)

func regularGrid223() *omf.RegularGrid {
	return &omf.RegularGrid{
		Count: [3]int{2, 2, 3},
		Size:  [3]float64{10, 10, 5},
	}
}

func TestRegularGridValidate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *omf.RegularGrid
		wantErr string
	}{
		{
			name: "valid",
			grid: regularGrid223(),
		},
		{
			name:    "zero count",
			grid:    &omf.RegularGrid{Count: [3]int{2, 0, 3}, Size: [3]float64{1, 1, 1}},
			wantErr: "block counts must be >= 1",
		},
		{
			name:    "negative size",
			grid:    &omf.RegularGrid{Count: [3]int{2, 2, 2}, Size: [3]float64{1, -1, 1}},
			wantErr: "block sizes must be greater than zero",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, [3]int{2, 2, 3}, tt.grid.ParentCount())
		})
	}
}

func TestTensorGridValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		grid := &omf.TensorGrid{
			TensorU: []float64{1, 2, 3},
			TensorV: []float64{5, 5},
			TensorW: []float64{10},
		}
		require.NoError(t, grid.Validate())
		assert.Equal(t, [3]int{3, 2, 1}, grid.ParentCount())
	})

	t.Run("empty axis", func(t *testing.T) {
		grid := &omf.TensorGrid{TensorU: []float64{1}, TensorV: []float64{1}}
		err := grid.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})

	t.Run("zero spacing", func(t *testing.T) {
		grid := &omf.TensorGrid{
			TensorU: []float64{1, 0},
			TensorV: []float64{1},
			TensorW: []float64{1},
		}
		err := grid.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "greater than zero")
	})
}

func TestBlockModelValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		bm.Name = "resource"
		require.NoError(t, bm.Validate())
		assert.Equal(t, [3]float64{1, 0, 0}, bm.AxisU)
		assert.Equal(t, 12, bm.NumParentBlocks())
		assert.Equal(t, 0, bm.NumSubblocks())
		assert.Equal(t, 12, bm.LocationLength(omf.LocationParentBlocks))
		assert.Equal(t, -1, bm.LocationLength(omf.LocationSubblocks))
		assert.Equal(t, []omf.Location{omf.LocationParentBlocks}, bm.ValidLocations())
	})

	t.Run("missing grid", func(t *testing.T) {
		bm := &omf.BlockModel{ElementBase: omf.ElementBase{Name: "bare"}}
		err := bm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grid is required")
	})

	t.Run("zero axis", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		bm.AxisW = [3]float64{0, 0, 0}
		err := bm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "axis_w must not be zero")
	})

	t.Run("non-orthogonal axes", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		bm.AxisV = [3]float64{1, 1, 0}
		err := bm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "axis_u and axis_v must be orthogonal")
	})

	t.Run("rotated axes", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		bm.AxisU = [3]float64{1, 1, 0}
		bm.AxisV = [3]float64{-1, 1, 0}
		require.NoError(t, bm.Validate())
	})

	t.Run("parent block attribute", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		values := make([]float64, 12)
		bm.Attributes = append(bm.Attributes, &omf.NumericAttribute{
			AttributeBase: omf.AttributeBase{Name: "cu", Location: omf.LocationParentBlocks},
			Array:         omf.NewFloat64Array(values),
		})
		require.NoError(t, bm.Validate())
	})

	t.Run("attribute length mismatch", func(t *testing.T) {
		bm := omf.NewBlockModel(regularGrid223())
		bm.Attributes = append(bm.Attributes, &omf.NumericAttribute{
			AttributeBase: omf.AttributeBase{Name: "cu", Location: omf.LocationParentBlocks},
			Array:         omf.NewFloat64Array([]float64{1, 2, 3}),
		})
		err := bm.Validate()
		assert.ErrorIs(t, err, omf.ErrLengthMismatch)
	})
}

func TestRegularSubblocksValidate(t *testing.T) {
	// One parent fully sub-blocked into 2x2x2, one kept whole.
	newSubblocks := func(t *testing.T) *omf.RegularSubblocks {
		t.Helper()
		return &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{
				{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
				{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
				{1, 0, 0},
			}),
			Corners: mustIntRows(t, [][]int64{
				{0, 0, 0, 1, 1, 1}, {1, 0, 0, 2, 1, 1},
				{0, 1, 0, 1, 2, 1}, {1, 1, 0, 2, 2, 1},
				{0, 0, 1, 1, 1, 2}, {1, 0, 1, 2, 1, 2},
				{0, 1, 1, 1, 2, 2}, {1, 1, 1, 2, 2, 2},
				{0, 0, 0, 2, 2, 2},
			}),
		}
	}

	t.Run("valid", func(t *testing.T) {
		sb := newSubblocks(t)
		require.NoError(t, sb.Validate([3]int{2, 1, 1}))
		assert.Equal(t, 9, sb.NumSubblocks())
	})

	t.Run("on a block model", func(t *testing.T) {
		bm := omf.NewBlockModel(&omf.RegularGrid{Count: [3]int{2, 1, 1}, Size: [3]float64{1, 1, 1}})
		bm.Subblocks = newSubblocks(t)
		require.NoError(t, bm.Validate())
		assert.Equal(t, 9, bm.NumSubblocks())
		assert.Equal(t, 9, bm.LocationLength(omf.LocationSubblocks))
		assert.Equal(t,
			[]omf.Location{omf.LocationParentBlocks, omf.LocationSubblocks},
			bm.ValidLocations())
	})

	t.Run("octree mode accepts powers of two", func(t *testing.T) {
		sb := newSubblocks(t)
		sb.Mode = omf.SubblockModeOctree
		require.NoError(t, sb.Validate([3]int{2, 1, 1}))
	})

	t.Run("octree mode rejects other counts", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{3, 2, 2},
			Mode:          omf.SubblockModeOctree,
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{0, 0, 0, 1, 1, 1}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "powers of two")
	})

	t.Run("unknown mode", func(t *testing.T) {
		sb := newSubblocks(t)
		sb.Mode = "fancy"
		err := sb.Validate([3]int{2, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown mode "fancy"`)
	})

	t.Run("full mode rejects partial boxes", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{4, 4, 4},
			Mode:          omf.SubblockModeFull,
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{0, 0, 0, 2, 2, 2}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "whole parent or a single cell")
	})

	t.Run("corners outside sub-block grid", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{0, 0, 0, 3, 1, 1}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the [2 2 2] sub-block grid")
	})

	t.Run("inverted corners", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{1, 0, 0, 1, 1, 1}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the [2 2 2] sub-block grid")
	})

	t.Run("parent index outside block grid", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{{2, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{0, 0, 0, 1, 1, 1}}),
		}
		err := sb.Validate([3]int{2, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside the [2 1 1] block grid")
	})

	t.Run("parent and corner length mismatch", func(t *testing.T) {
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}, {0, 0, 0}}),
			Corners:       mustIntRows(t, [][]int64{{0, 0, 0, 1, 1, 1}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match corners length")
	})

	t.Run("missing arrays", func(t *testing.T) {
		sb := &omf.RegularSubblocks{SubblockCount: [3]int{2, 2, 2}}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parent_indices and corners are required")
	})

	t.Run("non-integer corners", func(t *testing.T) {
		corners, err := omf.NewFloatRowsArray([][]float64{{0, 0, 0, 1, 1, 1}})
		require.NoError(t, err)
		sb := &omf.RegularSubblocks{
			SubblockCount: [3]int{2, 2, 2},
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       corners,
		}
		err = sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corners must be an Nx6 integer array")
	})
}

func TestFreeformSubblocksValidate(t *testing.T) {
	newCorners := func(t *testing.T, rows [][]float64) *omf.Array {
		t.Helper()
		a, err := omf.NewFloatRowsArray(rows)
		require.NoError(t, a.Validate())
		require.NoError(t, err)
		return a
	}

	t.Run("valid", func(t *testing.T) {
		sb := &omf.FreeformSubblocks{
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}, {0, 0, 0}}),
			Corners: newCorners(t, [][]float64{
				{0, 0, 0, 0.5, 0.5, 1},
				{0.5, 0, 0, 1, 1, 1},
			}),
		}
		require.NoError(t, sb.Validate([3]int{1, 1, 1}))
		assert.Equal(t, 2, sb.NumSubblocks())
	})

	t.Run("corner above one", func(t *testing.T) {
		sb := &omf.FreeformSubblocks{
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       newCorners(t, [][]float64{{0, 0, 0, 1, 1, 1.5}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 <= min < max <= 1")
	})

	t.Run("degenerate box", func(t *testing.T) {
		sb := &omf.FreeformSubblocks{
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       newCorners(t, [][]float64{{0, 0.5, 0, 1, 0.5, 1}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0 <= min < max <= 1")
	})

	t.Run("wrong shape", func(t *testing.T) {
		sb := &omf.FreeformSubblocks{
			ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}}),
			Corners:       newCorners(t, [][]float64{{0, 0, 0}}),
		}
		err := sb.Validate([3]int{1, 1, 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corners must be Nx6")
	})
}

func TestBlockModelSubblockAttribute(t *testing.T) {
	bm := omf.NewBlockModel(&omf.RegularGrid{Count: [3]int{1, 1, 1}, Size: [3]float64{1, 1, 1}})
	bm.Name = "sub-blocked"
	bm.Subblocks = &omf.RegularSubblocks{
		SubblockCount: [3]int{2, 1, 1},
		ParentIndices: mustIntRows(t, [][]int64{{0, 0, 0}, {0, 0, 0}}),
		Corners: mustIntRows(t, [][]int64{
			{0, 0, 0, 1, 1, 1},
			{1, 0, 0, 2, 1, 1},
		}),
	}
	bm.Attributes = append(bm.Attributes, &omf.NumericAttribute{
		AttributeBase: omf.AttributeBase{Name: "density", Location: omf.LocationSubblocks},
		Array:         omf.NewFloat64Array([]float64{2.7, 3.1}),
	})
	require.NoError(t, bm.Validate())

	bm.Attributes[0].(*omf.NumericAttribute).Array = omf.NewFloat64Array([]float64{2.7})
	assert.ErrorIs(t, bm.Validate(), omf.ErrLengthMismatch)
}
