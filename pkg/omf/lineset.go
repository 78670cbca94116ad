package omf

import (
	"encoding/json"
	"errors"
)

// LineSet holds connected line segments: vertex locations plus an Nx2 array
// of segment endpoint indices.
type LineSet struct {
	ElementBase
	Vertices *Array `json:"vertices"`
	Segments *Array `json:"segments"`
}

// Schema implements Element.
func (l *LineSet) Schema() string { return SchemaElementLineSet }

// NumVertices returns the number of vertices.
func (l *LineSet) NumVertices() int {
	if l.Vertices == nil {
		return 0
	}
	return l.Vertices.Len()
}

// NumSegments returns the number of segments.
func (l *LineSet) NumSegments() int {
	if l.Segments == nil {
		return 0
	}
	return l.Segments.Len()
}

// ValidLocations implements Element.
func (l *LineSet) ValidLocations() []Location {
	return []Location{LocationVertices, LocationSegments}
}

// LocationLength implements Element.
func (l *LineSet) LocationLength(loc Location) int {
	switch loc {
	case LocationVertices:
		return l.NumVertices()
	case LocationSegments:
		return l.NumSegments()
	}
	return -1
}

// Validate implements Element.
func (l *LineSet) Validate() error {
	var errs []error
	if err := checkVertexArray(l.Vertices, "vertices"); err != nil {
		errs = append(errs, err)
	} else if err := checkIndexArray(l.Segments, 2, l.NumVertices(), "segments"); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validateElement(l))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: l.Name, Err: err}
	}
	return nil
}

func (l *LineSet) payloads() []Payload {
	out := collectPayloads(l.Vertices, l.Segments)
	return append(out, l.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (l *LineSet) MarshalJSON() ([]byte, error) {
	type alias LineSet
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{l.Schema(), (*alias)(l)})
}
