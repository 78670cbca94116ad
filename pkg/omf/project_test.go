package omf_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
)

// sampleProject builds a project mixing element, attribute and colormap
// types under one root.
func sampleProject(t *testing.T) *omf.Project {
	t.Helper()

	points := &omf.PointSet{
		ElementBase: omf.ElementBase{Name: "collars", Description: "drill collars"},
		Vertices:    squareVertices(),
	}
	points.Attributes = append(points.Attributes,
		&omf.NumericAttribute{
			AttributeBase: omf.AttributeBase{Name: "elevation", Location: omf.LocationVertices},
			Array:         omf.NewFloat64Array([]float64{120, 121.5, 119, 122}),
			Colormap: &omf.ContinuousColormap{
				Gradient: omf.NewRGBArray([]omf.Color{{0, 0, 255}, {255, 0, 0}}),
				Limits:   [2]float64{119, 122},
			},
		},
		&omf.StringAttribute{
			AttributeBase: omf.AttributeBase{Name: "hole_id", Location: omf.LocationVertices},
			Array:         omf.NewStringList([]string{"DH-001", "DH-002", "DH-003", "DH-004"}),
		},
	)

	lines := &omf.LineSet{
		ElementBase: omf.ElementBase{Name: "traces"},
		Vertices:    squareVertices(),
		Segments:    mustIntRows(t, [][]int64{{0, 1}, {1, 2}, {2, 3}}),
	}

	surface := &omf.Surface{
		ElementBase: omf.ElementBase{Name: "topo"},
		Vertices:    squareVertices(),
		Triangles:   mustIntRows(t, [][]int64{{0, 1, 2}, {0, 2, 3}}),
	}

	blocks := omf.NewBlockModel(regularGrid223())
	blocks.Name = "resource"
	blocks.Origin = [3]float64{1000, 2000, 100}

	composite := &omf.Composite{
		ElementBase: omf.ElementBase{Name: "pit"},
		Elements:    omf.ElementList{surface},
	}

	return &omf.Project{
		Name:        "mine site",
		Description: "integration fixture",
		Origin:      [3]float64{450000, 6100000, 0},
		Metadata:    omf.Metadata{"coordinate_reference_system": "EPSG:28350"},
		Elements:    omf.ElementList{points, lines, blocks, composite},
	}
}

// attachFrom reattaches decoded payloads from the source project, keyed by
// payload UID, the way an archive reader does.
func attachFrom(t *testing.T, dst, src *omf.Project) {
	t.Helper()
	byUID := make(map[uuid.UUID][]byte)
	for _, p := range src.Payloads() {
		data, err := p.PayloadBytes()
		require.NoError(t, err)
		byUID[p.PayloadUID()] = data
	}
	for _, p := range dst.Payloads() {
		data, ok := byUID[p.PayloadUID()]
		require.True(t, ok, "payload %s not found", p.PayloadUID())
		require.NoError(t, p.AttachPayload(data))
	}
}

func TestProjectValidate(t *testing.T) {
	project := sampleProject(t)
	require.NoError(t, project.Validate())

	t.Run("broken element surfaces with its index", func(t *testing.T) {
		broken := sampleProject(t)
		broken.Elements[1].(*omf.LineSet).Segments = mustIntRows(t, [][]int64{{0, 9}})
		err := broken.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "elements[1]")
	})

	t.Run("bad metadata key", func(t *testing.T) {
		broken := sampleProject(t)
		broken.Metadata = omf.Metadata{"coordinate_reference_system": 12345}
		assert.Error(t, broken.Validate())
	})
}

func TestProjectPayloads(t *testing.T) {
	project := sampleProject(t)
	payloads := project.Payloads()
	// collar vertices, elevation values, gradient, hole ids, trace vertices
	// and segments, topo vertices and triangles.
	assert.Len(t, payloads, 8)

	seen := make(map[uuid.UUID]bool)
	for _, p := range payloads {
		assert.False(t, seen[p.PayloadUID()], "duplicate payload %s", p.PayloadUID())
		seen[p.PayloadUID()] = true
	}
}

func TestProjectJSONRoundTrip(t *testing.T) {
	original := sampleProject(t)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded omf.Project
	require.NoError(t, json.Unmarshal(data, &decoded))

	// The index carries no payload bytes.
	for _, p := range decoded.Payloads() {
		if a, ok := p.(*omf.Array); ok {
			assert.Nil(t, a.Data)
		}
	}

	attachFrom(t, &decoded, original)
	require.NoError(t, decoded.Validate())

	if diff := cmp.Diff(original, &decoded); diff != "" {
		t.Errorf("project mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestProjectUnmarshalRejectsWrongSchema(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "element at the root",
			input:   `{"schema":"org.omf.v2.element.pointset","name":"x"}`,
			wantErr: "is not a project",
		},
		{
			name:    "missing schema",
			input:   `{"name":"x"}`,
			wantErr: "missing schema field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p omf.Project
			err := json.Unmarshal([]byte(tt.input), &p)
			require.Error(t, err)
			assert.ErrorIs(t, err, omf.ErrSchemaUnknown)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestElementListUnmarshalUnknownSchema(t *testing.T) {
	input := `{"schema":"org.omf.v2.project","elements":[{"schema":"org.omf.v2.element.voxel"}]}`
	var p omf.Project
	err := json.Unmarshal([]byte(input), &p)
	require.Error(t, err)
	assert.ErrorIs(t, err, omf.ErrSchemaUnknown)
}

func TestProjectSchemaDispatch(t *testing.T) {
	original := sampleProject(t)
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded omf.Project
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Elements, 4)

	assert.IsType(t, &omf.PointSet{}, decoded.Elements[0])
	assert.IsType(t, &omf.LineSet{}, decoded.Elements[1])
	assert.IsType(t, &omf.BlockModel{}, decoded.Elements[2])
	assert.IsType(t, &omf.Composite{}, decoded.Elements[3])

	points := decoded.Elements[0].(*omf.PointSet)
	require.Len(t, points.Attributes, 2)
	assert.IsType(t, &omf.NumericAttribute{}, points.Attributes[0])
	assert.IsType(t, &omf.StringAttribute{}, points.Attributes[1])
	assert.IsType(t, &omf.ContinuousColormap{},
		points.Attributes[0].(*omf.NumericAttribute).Colormap)

	blocks := decoded.Elements[2].(*omf.BlockModel)
	assert.IsType(t, &omf.RegularGrid{}, blocks.Grid)
	assert.Equal(t, [3]float64{1000, 2000, 100}, blocks.Origin)

	composite := decoded.Elements[3].(*omf.Composite)
	require.Len(t, composite.Elements, 1)
	assert.IsType(t, &omf.Surface{}, composite.Elements[0])
}
