package omf

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Surface holds an unstructured triangulated mesh: vertex locations plus an
// Nx3 array of triangle vertex indices. Attribute arrays map positionally
// onto vertices or faces.
type Surface struct {
	ElementBase
	Vertices  *Array      `json:"vertices"`
	Triangles *Array      `json:"triangles"`
	Textures  TextureList `json:"textures,omitempty"`
}

// Schema implements Element.
func (s *Surface) Schema() string { return SchemaElementSurface }

// NumVertices returns the number of vertices.
func (s *Surface) NumVertices() int {
	if s.Vertices == nil {
		return 0
	}
	return s.Vertices.Len()
}

// NumFaces returns the number of triangles.
func (s *Surface) NumFaces() int {
	if s.Triangles == nil {
		return 0
	}
	return s.Triangles.Len()
}

// ValidLocations implements Element.
func (s *Surface) ValidLocations() []Location {
	return []Location{LocationVertices, LocationFaces}
}

// LocationLength implements Element.
func (s *Surface) LocationLength(loc Location) int {
	switch loc {
	case LocationVertices:
		return s.NumVertices()
	case LocationFaces:
		return s.NumFaces()
	}
	return -1
}

// Validate implements Element.
func (s *Surface) Validate() error {
	var errs []error
	if err := checkVertexArray(s.Vertices, "vertices"); err != nil {
		errs = append(errs, err)
	} else if err := checkIndexArray(s.Triangles, 3, s.NumVertices(), "triangles"); err != nil {
		errs = append(errs, err)
	}
	for i, tex := range s.Textures {
		if err := tex.Validate(s.NumVertices()); err != nil {
			errs = append(errs, fmt.Errorf("textures[%d]: %w", i, err))
		}
	}
	errs = append(errs, validateElement(s))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: s.Name, Err: err}
	}
	return nil
}

func (s *Surface) payloads() []Payload {
	out := collectPayloads(s.Vertices, s.Triangles)
	for _, tex := range s.Textures {
		out = append(out, tex.payloads()...)
	}
	return append(out, s.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (s *Surface) MarshalJSON() ([]byte, error) {
	type alias Surface
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{s.Schema(), (*alias)(s)})
}

// TensorGridSurface is a structured surface grid: cell sizes along U and V
// from an origin, with an optional per-vertex vertical offset array.
//
// Grid attribute values are stored flattened with the U index varying
// fastest: the value for node or cell (i, j) sits at j*countU + i. Readers
// unwrap that index to place values on the grid.
type TensorGridSurface struct {
	ElementBase
	Origin   [3]float64  `json:"origin"`
	TensorU  []float64   `json:"tensor_u"`
	TensorV  []float64   `json:"tensor_v"`
	Offset   *Array      `json:"offset_w,omitempty"`
	Textures TextureList `json:"textures,omitempty"`
}

// Schema implements Element.
func (t *TensorGridSurface) Schema() string { return SchemaElementTensorGridSurface }

// NumVertices returns the number of grid nodes, (len(U)+1)*(len(V)+1).
func (t *TensorGridSurface) NumVertices() int {
	if len(t.TensorU) == 0 || len(t.TensorV) == 0 {
		return 0
	}
	return (len(t.TensorU) + 1) * (len(t.TensorV) + 1)
}

// NumFaces returns the number of grid cells, len(U)*len(V).
func (t *TensorGridSurface) NumFaces() int {
	return len(t.TensorU) * len(t.TensorV)
}

// ValidLocations implements Element.
func (t *TensorGridSurface) ValidLocations() []Location {
	return []Location{LocationVertices, LocationFaces}
}

// LocationLength implements Element.
func (t *TensorGridSurface) LocationLength(loc Location) int {
	switch loc {
	case LocationVertices:
		return t.NumVertices()
	case LocationFaces:
		return t.NumFaces()
	}
	return -1
}

// Validate implements Element.
func (t *TensorGridSurface) Validate() error {
	var errs []error
	if len(t.TensorU) == 0 || len(t.TensorV) == 0 {
		errs = append(errs, fmt.Errorf("tensor_u and tensor_v must not be empty"))
	}
	for _, tensor := range [][]float64{t.TensorU, t.TensorV} {
		for _, size := range tensor {
			if size <= 0 {
				errs = append(errs, fmt.Errorf("tensor cell sizes must be greater than zero, got %v", size))
			}
		}
	}
	if t.Offset != nil {
		if err := t.Offset.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("offset_w: %w", err))
		} else if len(t.Offset.Shape) != 1 || t.Offset.Len() != t.NumVertices() {
			errs = append(errs, fmt.Errorf("offset_w must hold one value per grid node (%d), got shape %v",
				t.NumVertices(), t.Offset.Shape))
		}
	}
	for i, tex := range t.Textures {
		if err := tex.Validate(t.NumVertices()); err != nil {
			errs = append(errs, fmt.Errorf("textures[%d]: %w", i, err))
		}
	}
	errs = append(errs, validateElement(t))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: t.Name, Err: err}
	}
	return nil
}

func (t *TensorGridSurface) payloads() []Payload {
	out := collectPayloads(t.Offset)
	for _, tex := range t.Textures {
		out = append(out, tex.payloads()...)
	}
	return append(out, t.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (t *TensorGridSurface) MarshalJSON() ([]byte, error) {
	type alias TensorGridSurface
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{t.Schema(), (*alias)(t)})
}
