package omf

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PointSet holds point locations and optional mapped textures.
type PointSet struct {
	ElementBase
	Vertices *Array      `json:"vertices"`
	Textures TextureList `json:"textures,omitempty"`
}

// Schema implements Element.
func (p *PointSet) Schema() string { return SchemaElementPointSet }

// NumVertices returns the number of points.
func (p *PointSet) NumVertices() int {
	if p.Vertices == nil {
		return 0
	}
	return p.Vertices.Len()
}

// ValidLocations implements Element.
func (p *PointSet) ValidLocations() []Location {
	return []Location{LocationVertices}
}

// LocationLength implements Element.
func (p *PointSet) LocationLength(loc Location) int {
	if loc == LocationVertices {
		return p.NumVertices()
	}
	return -1
}

// Validate implements Element.
func (p *PointSet) Validate() error {
	var errs []error
	if err := checkVertexArray(p.Vertices, "vertices"); err != nil {
		errs = append(errs, err)
	}
	for i, tex := range p.Textures {
		if err := tex.Validate(p.NumVertices()); err != nil {
			errs = append(errs, fmt.Errorf("textures[%d]: %w", i, err))
		}
	}
	errs = append(errs, validateElement(p))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: p.Name, Err: err}
	}
	return nil
}

func (p *PointSet) payloads() []Payload {
	out := collectPayloads(p.Vertices)
	for _, tex := range p.Textures {
		out = append(out, tex.payloads()...)
	}
	return append(out, p.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (p *PointSet) MarshalJSON() ([]byte, error) {
	type alias PointSet
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{p.Schema(), (*alias)(p)})
}
