package omf_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/openmining/omf/pkg/omf"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bmpBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestImageValidateAndDecode(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		img := omf.NewImage(pngBytes(t))
		require.NoError(t, img.Validate())

		decoded, err := img.Decode()
		require.NoError(t, err)
		assert.Equal(t, 2, decoded.Bounds().Dx())
	})

	t.Run("bmp", func(t *testing.T) {
		img := omf.NewImage(bmpBytes(t))
		require.NoError(t, img.Validate())
	})

	t.Run("missing payload", func(t *testing.T) {
		img := &omf.Image{}
		assert.ErrorIs(t, img.Validate(), omf.ErrPayloadMissing)
		_, err := img.Decode()
		assert.ErrorIs(t, err, omf.ErrPayloadMissing)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		img := omf.NewImage([]byte("not an image"))
		err := img.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a supported image")
	})
}

func TestImageIndexJSON(t *testing.T) {
	img := omf.NewImage(pngBytes(t))

	data, err := json.Marshal(img)
	require.NoError(t, err)

	var decoded omf.Image
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, img.UID, decoded.UID)
	assert.Nil(t, decoded.Data)

	require.NoError(t, decoded.AttachPayload(img.Data))
	require.NoError(t, decoded.Validate())
}

func TestProjectedTextureValidate(t *testing.T) {
	valid := func(t *testing.T) *omf.ProjectedTexture {
		t.Helper()
		return &omf.ProjectedTexture{
			Name:  "ortho",
			AxisU: [3]float64{10, 0, 0},
			AxisV: [3]float64{0, 10, 0},
			Image: omf.NewImage(pngBytes(t)),
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid(t).Validate(4))
	})

	t.Run("missing image", func(t *testing.T) {
		tex := valid(t)
		tex.Image = nil
		err := tex.Validate(4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image is required")
	})

	t.Run("zero axis", func(t *testing.T) {
		tex := valid(t)
		tex.AxisV = [3]float64{}
		err := tex.Validate(4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "axes must not be zero")
	})
}

func TestUVMappedTextureValidate(t *testing.T) {
	uv := func(t *testing.T, rows [][]float64) *omf.Array {
		t.Helper()
		a, err := omf.NewFloatRowsArray(rows)
		require.NoError(t, err)
		return a
	}

	valid := func(t *testing.T) *omf.UVMappedTexture {
		t.Helper()
		return &omf.UVMappedTexture{
			Name:  "draped",
			UV:    uv(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}),
			Image: omf.NewImage(pngBytes(t)),
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid(t).Validate(4))
	})

	t.Run("missing uv", func(t *testing.T) {
		tex := valid(t)
		tex.UV = nil
		err := tex.Validate(4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "uv coordinates are required")
	})

	t.Run("wrong shape", func(t *testing.T) {
		tex := valid(t)
		tex.UV = uv(t, [][]float64{{0, 0, 0}})
		err := tex.Validate(1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "uv must be Nx2")
	})

	t.Run("length mismatch", func(t *testing.T) {
		err := valid(t).Validate(5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not match vertex count")
	})

	t.Run("out of range", func(t *testing.T) {
		tex := valid(t)
		tex.UV = uv(t, [][]float64{{0, 0}, {1.5, 0}, {1, 1}, {0, 1}})
		err := tex.Validate(4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 1")
	})
}
