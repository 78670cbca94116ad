package omf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
)

func TestContinuousColormapValidate(t *testing.T) {
	gradient := omf.NewRGBArray([]omf.Color{{0, 0, 255}, {0, 255, 0}, {255, 0, 0}})

	t.Run("valid", func(t *testing.T) {
		cm := &omf.ContinuousColormap{Gradient: gradient, Limits: [2]float64{0, 10}}
		assert.NoError(t, cm.Validate())
	})

	t.Run("missing gradient", func(t *testing.T) {
		cm := &omf.ContinuousColormap{Limits: [2]float64{0, 10}}
		err := cm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gradient is required")
	})

	t.Run("descending limits", func(t *testing.T) {
		cm := &omf.ContinuousColormap{Gradient: gradient, Limits: [2]float64{10, 0}}
		err := cm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limits")
	})

	t.Run("gradient must be Nx3", func(t *testing.T) {
		cm := &omf.ContinuousColormap{
			Gradient: omf.NewInt64Array([]int64{0, 255}),
			Limits:   [2]float64{0, 1},
		}
		err := cm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Nx3")
	})

	t.Run("out of range channel", func(t *testing.T) {
		bad, err := omf.NewIntRowsArray([][]int64{{0, 0, 300}})
		require.NoError(t, err)
		cm := &omf.ContinuousColormap{Gradient: bad, Limits: [2]float64{0, 1}}
		err = cm.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 255")
	})
}

func TestDiscreteColormapValidate(t *testing.T) {
	tests := []struct {
		name    string
		cm      *omf.DiscreteColormap
		wantErr string
	}{
		{
			name: "valid",
			cm: &omf.DiscreteColormap{
				EndPoints:    []float64{0.5, 1.5},
				EndInclusive: []bool{true, false},
				Colors:       []omf.Color{{0, 0, 255}, {0, 255, 0}, {255, 0, 0}},
			},
		},
		{
			name: "single interval needs no end points",
			cm: &omf.DiscreteColormap{
				Colors: []omf.Color{{128, 128, 128}},
			},
		},
		{
			name:    "no colors",
			cm:      &omf.DiscreteColormap{},
			wantErr: "at least one color",
		},
		{
			name: "colors off by one",
			cm: &omf.DiscreteColormap{
				EndPoints:    []float64{1},
				EndInclusive: []bool{true},
				Colors:       []omf.Color{{0, 0, 0}},
			},
			wantErr: "one greater",
		},
		{
			name: "decreasing end points",
			cm: &omf.DiscreteColormap{
				EndPoints:    []float64{2, 1},
				EndInclusive: []bool{true, true},
				Colors:       []omf.Color{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}},
			},
			wantErr: "monotonically increasing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cm.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCategoryColormapValidate(t *testing.T) {
	tests := []struct {
		name    string
		cm      *omf.CategoryColormap
		wantErr string
	}{
		{
			name: "valid with colors",
			cm: &omf.CategoryColormap{
				Indices: []int64{0, 1, 2},
				Values:  []string{"air", "ore", "waste"},
				Colors:  []omf.Color{{0, 0, 0}, {255, 215, 0}, {120, 120, 120}},
			},
		},
		{
			name: "valid without colors",
			cm: &omf.CategoryColormap{
				Indices: []int64{10, 20},
				Values:  []string{"a", "b"},
			},
		},
		{
			name: "length mismatch",
			cm: &omf.CategoryColormap{
				Indices: []int64{0, 1},
				Values:  []string{"a"},
			},
			wantErr: "same length",
		},
		{
			name: "colors mismatch",
			cm: &omf.CategoryColormap{
				Indices: []int64{0},
				Values:  []string{"a"},
				Colors:  []omf.Color{{0, 0, 0}, {1, 1, 1}},
			},
			wantErr: "colors and values",
		},
		{
			name: "duplicate index",
			cm: &omf.CategoryColormap{
				Indices: []int64{3, 3},
				Values:  []string{"a", "b"},
			},
			wantErr: "duplicate index",
		},
		{
			name: "negative index",
			cm: &omf.CategoryColormap{
				Indices: []int64{-2},
				Values:  []string{"a"},
			},
			wantErr: "negative index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cm.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
