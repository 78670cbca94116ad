package omf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
)

func TestMetadataTouch(t *testing.T) {
	t.Run("nil metadata", func(t *testing.T) {
		var m omf.Metadata
		now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

		m = m.Touch(now)
		require.NotNil(t, m)
		assert.Equal(t, "2026-03-14T09:26:53Z", m[omf.MetadataKeyDateCreated])
		assert.Equal(t, "2026-03-14T09:26:53Z", m[omf.MetadataKeyDateModified])
	})

	t.Run("second touch keeps date_created", func(t *testing.T) {
		first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
		later := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

		m := omf.Metadata{}.Touch(first).Touch(later)
		assert.Equal(t, "2026-03-14T09:00:00Z", m[omf.MetadataKeyDateCreated])
		assert.Equal(t, "2026-03-15T12:00:00Z", m[omf.MetadataKeyDateModified])
	})

	t.Run("preserves other keys", func(t *testing.T) {
		m := omf.Metadata{"units": "m"}.Touch(time.Now())
		assert.Equal(t, "m", m["units"])
	})
}

func TestMetadataColor(t *testing.T) {
	tests := []struct {
		name    string
		color   any
		wantErr string
	}{
		{name: "int components", color: []any{255, 128, 0}},
		{name: "float components", color: []any{255.0, 128.0, 0.0}},
		{name: "hex string", color: "#ff8000"},
		{name: "component out of range", color: []any{300, 0, 0}, wantErr: "integers 0-255"},
		{name: "fractional component", color: []any{12.5, 0.0, 0.0}, wantErr: "integers 0-255"},
		{name: "wrong arity", color: []any{255, 128}, wantErr: "[r, g, b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &omf.PointSet{
				ElementBase: omf.ElementBase{
					Name:     "collars",
					Metadata: omf.Metadata{omf.MetadataKeyColor: tt.color},
				},
				Vertices: squareVertices(),
			}
			err := ps.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
