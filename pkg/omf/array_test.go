package omf_test

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
)

func TestArrayConstructors(t *testing.T) {
	tests := []struct {
		name     string
		array    *omf.Array
		dataType omf.DataType
		shape    []int
		size     int
	}{
		{
			name:     "float64 1D",
			array:    omf.NewFloat64Array([]float64{1, 2, 3}),
			dataType: omf.DataTypeFloat64,
			shape:    []int{3},
			size:     24,
		},
		{
			name:     "float32 1D",
			array:    omf.NewFloat32Array([]float32{1, 2}),
			dataType: omf.DataTypeFloat32,
			shape:    []int{2},
			size:     8,
		},
		{
			name:     "int64 1D",
			array:    omf.NewInt64Array([]int64{-1, 0, 1, 2}),
			dataType: omf.DataTypeInt64,
			shape:    []int{4},
			size:     32,
		},
		{
			name:     "vectors 3D",
			array:    omf.NewVector3Array([][3]float64{{0, 0, 0}, {1, 1, 1}}),
			dataType: omf.DataTypeFloat64,
			shape:    []int{2, 3},
			size:     48,
		},
		{
			name:     "bool bit-packed",
			array:    omf.NewBoolArray([]bool{true, false, true, true, false, false, true, false, true}),
			dataType: omf.DataTypeBoolean,
			shape:    []int{9},
			size:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.array.Validate())
			assert.Equal(t, tt.dataType, tt.array.DataType)
			assert.Equal(t, tt.shape, tt.array.Shape)
			assert.Equal(t, tt.size, tt.array.Size())
			assert.Len(t, tt.array.Data, tt.size)
		})
	}
}

func TestArrayRoundTrip(t *testing.T) {
	t.Run("floats", func(t *testing.T) {
		in := []float64{0.5, -1.25, 1e9}
		out, err := omf.NewFloat64Array(in).Floats()
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("ints", func(t *testing.T) {
		in := []int64{-5, 0, 42, 1 << 40}
		out, err := omf.NewInt64Array(in).Ints()
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("int32 widened", func(t *testing.T) {
		out, err := omf.NewInt32Array([]int32{-7, 7}).Ints()
		require.NoError(t, err)
		assert.Equal(t, []int64{-7, 7}, out)
	})

	t.Run("bools", func(t *testing.T) {
		in := []bool{true, false, false, true, true, false, true, false, false, true}
		out, err := omf.NewBoolArray(in).Bools()
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("vector rows", func(t *testing.T) {
		a := omf.NewVector3Array([][3]float64{{1, 2, 3}, {4, 5, 6}})
		rows, err := a.FloatRows()
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, rows)
	})

	t.Run("uint64 beyond int64 range", func(t *testing.T) {
		data := make([]byte, 16)
		binary.LittleEndian.PutUint64(data, 7)
		binary.LittleEndian.PutUint64(data[8:], 1<<63)
		a := &omf.Array{
			UID:      uuid.New(),
			DataType: omf.DataTypeUint64,
			Shape:    []int{2},
			Data:     data,
		}

		_, err := a.Ints()
		assert.ErrorContains(t, err, "overflows int64")

		floats, err := a.Floats()
		require.NoError(t, err)
		assert.Equal(t, []float64{7, float64(uint64(1) << 63)}, floats)
	})
}

func TestArrayTypeMismatch(t *testing.T) {
	floats := omf.NewFloat64Array([]float64{1})
	_, err := floats.Ints()
	assert.ErrorIs(t, err, omf.ErrDataTypeMismatch)

	_, err = floats.Bools()
	assert.ErrorIs(t, err, omf.ErrDataTypeMismatch)

	bools := omf.NewBoolArray([]bool{true})
	_, err = bools.Floats()
	assert.ErrorIs(t, err, omf.ErrDataTypeMismatch)
}

func TestArrayValidate(t *testing.T) {
	a := omf.NewFloat64Array([]float64{1, 2})
	require.NoError(t, a.Validate())

	t.Run("missing payload", func(t *testing.T) {
		detached := *a
		detached.Data = nil
		assert.ErrorIs(t, detached.Validate(), omf.ErrPayloadMissing)
	})

	t.Run("wrong payload size", func(t *testing.T) {
		truncated := *a
		truncated.Data = truncated.Data[:8]
		assert.Error(t, truncated.Validate())
	})

	t.Run("bad data type", func(t *testing.T) {
		bad := *a
		bad.DataType = omf.DataType("ComplexArray")
		assert.ErrorIs(t, bad.Validate(), omf.ErrInvalidDataType)
	})
}

func TestArrayIndexJSON(t *testing.T) {
	a := omf.NewInt32Array([]int32{1, 2, 3})

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schema":"org.omf.v2.array.numeric"`)
	assert.Contains(t, string(raw), a.UID.String())

	var decoded omf.Array
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, a.UID, decoded.UID)
	assert.Equal(t, a.DataType, decoded.DataType)
	assert.Equal(t, a.Shape, decoded.Shape)

	// Payload travels separately from the index
	assert.Nil(t, decoded.Data)
	require.NoError(t, decoded.AttachPayload(a.Data))
	out, err := decoded.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, out)
}

func TestStringListDataType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   omf.DataType
	}{
		{"plain strings", []string{"granite", "schist"}, omf.DataTypeString},
		{"datetimes", []string{"2024-01-01T00:00:00Z", "2024-06-15T12:30:00Z"}, omf.DataTypeDateTime},
		{"mixed falls back to string", []string{"2024-01-01T00:00:00Z", "not a date"}, omf.DataTypeString},
		{"empty is string", nil, omf.DataTypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := omf.NewStringList(tt.values)
			assert.Equal(t, tt.want, l.DataType())
		})
	}
}

func TestStringListPayloadRoundTrip(t *testing.T) {
	l := omf.NewStringList([]string{"a", "b", "c"})

	payload, err := l.PayloadBytes()
	require.NoError(t, err)

	raw, err := json.Marshal(l)
	require.NoError(t, err)

	var decoded omf.StringList
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, l.UID, decoded.UID)
	assert.Nil(t, decoded.Values)

	require.NoError(t, decoded.AttachPayload(payload))
	assert.Equal(t, l.Values, decoded.Values)
}
