package omffile_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmining/omf/pkg/omf"
	"github.com/openmining/omf/pkg/omf/omffile"
)

func testProject(t *testing.T) *omf.Project {
	t.Helper()

	points := &omf.PointSet{
		ElementBase: omf.ElementBase{Name: "collars"},
		Vertices: omf.NewVector3Array([][3]float64{
			{0, 0, 0}, {10, 0, 0}, {10, 10, 0},
		}),
	}
	points.Attributes = append(points.Attributes, &omf.NumericAttribute{
		AttributeBase: omf.AttributeBase{Name: "au_ppm", Location: omf.LocationVertices},
		Array:         omf.NewFloat64Array([]float64{0.3, 1.2, 0.8}),
	})

	return &omf.Project{
		Name:     "drillholes",
		Elements: omf.ElementList{points},
	}
}

func writeArchive(t *testing.T, p *omf.Project) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, omffile.Write(context.Background(), p, &buf))
	return buf.Bytes()
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := testProject(t)
	data := writeArchive(t, original)

	project, err := omffile.Read(ctx, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "drillholes", project.Name)
	require.Len(t, project.Elements, 1)

	points := project.Elements[0].(*omf.PointSet)
	rows, err := points.Vertices.FloatRows()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}}, rows)

	values, err := points.Attributes[0].(*omf.NumericAttribute).Array.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 1.2, 0.8}, values)
}

func TestWriteRejectsInvalidProject(t *testing.T) {
	broken := &omf.Project{
		Elements: omf.ElementList{
			&omf.PointSet{ElementBase: omf.ElementBase{Name: "no vertices"}},
		},
	}
	var buf bytes.Buffer
	err := omffile.Write(context.Background(), broken, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate")
}

func TestWriteHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := omffile.Write(ctx, testProject(t), &buf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadRejectsNonArchive(t *testing.T) {
	data := []byte("this is not a zip file")
	_, err := omffile.Read(context.Background(), bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, omffile.ErrFormat)
}

func TestReadRejectsWrongComment(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.SetComment("application/zip"))
	_, err := zw.Create("index.json")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = omffile.Read(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Error(t, err)
	assert.ErrorIs(t, err, omffile.ErrFormat)
	assert.Contains(t, err.Error(), "comment")
}

func TestReadRejectsMissingIndex(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.SetComment(omffile.FormatIdentifier))
	require.NoError(t, zw.Close())

	_, err := omffile.Read(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.Error(t, err)
	assert.ErrorIs(t, err, omffile.ErrFormat)
	assert.Contains(t, err.Error(), "index.json")
}

func TestReadReportsMissingPayload(t *testing.T) {
	// Rebuild the archive without its array entries so the index references
	// payloads that are not there.
	data := writeArchive(t, testProject(t))
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.SetComment(omffile.FormatIdentifier))
	for _, f := range zr.File {
		if f.Name != "index.json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		_, err = io.Copy(w, rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
	}
	require.NoError(t, zw.Close())

	_, err = omffile.Read(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, omf.ErrPayloadMissing)
}

func TestReadSkipsUnreferencedArrays(t *testing.T) {
	data := writeArchive(t, testProject(t))
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	require.NoError(t, zw.SetComment(omffile.FormatIdentifier))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		_, err = io.Copy(w, rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
	}
	orphan, err := zw.Create("arrays/" + uuid.NewString())
	require.NoError(t, err)
	_, err = orphan.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	project, err := omffile.Read(context.Background(), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "drillholes", project.Name)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "drillholes.omf")

	require.NoError(t, omffile.Save(ctx, testProject(t), path))

	project, err := omffile.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "drillholes", project.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := omffile.Load(context.Background(), filepath.Join(t.TempDir(), "absent.omf"))
	assert.Error(t, err)
}

func TestPackerImplementsInterface(t *testing.T) {
	var _ omf.Packer = omffile.NewPacker()

	ctx := context.Background()
	packer := omffile.NewPacker()

	var buf bytes.Buffer
	require.NoError(t, packer.Pack(ctx, testProject(t), &buf))

	project, err := packer.Unpack(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, "drillholes", project.Name)
}
