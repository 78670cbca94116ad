package omf

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Project is the root of the OMF data model: an ordered list of elements
// plus project-wide metadata and an origin offset applied to all element
// coordinates relative to the coordinate reference system.
type Project struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Metadata    Metadata    `json:"metadata,omitempty"`
	Origin      [3]float64  `json:"origin"`
	Elements    ElementList `json:"elements"`
}

// Schema returns the project schema identifier.
func (p *Project) Schema() string { return SchemaProject }

// Validate walks the whole project tree and joins every violation found.
func (p *Project) Validate() error {
	var errs []error
	if err := p.Metadata.validateScope(scopeProject); err != nil {
		errs = append(errs, err)
	}
	for i, e := range p.Elements {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("elements[%d]: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: p.Name, Err: err}
	}
	return nil
}

// Payloads returns every binary payload referenced from the project index:
// geometry and attribute arrays, string lists and texture images.
func (p *Project) Payloads() []Payload {
	var out []Payload
	for _, e := range p.Elements {
		out = append(out, e.payloads()...)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (p *Project) MarshalJSON() ([]byte, error) {
	type alias Project
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{p.Schema(), (*alias)(p)})
}

// UnmarshalJSON implements json.Unmarshaler. It rejects indexes whose root
// schema is not a project.
func (p *Project) UnmarshalJSON(b []byte) error {
	schema, err := peekSchema(b)
	if err != nil {
		return err
	}
	if schema != SchemaProject {
		return fmt.Errorf("%w: %q is not a project", ErrSchemaUnknown, schema)
	}
	type alias Project
	return json.Unmarshal(b, (*alias)(p))
}
