package omf

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Composite groups child elements into a single logical element. Attributes
// at the elements location hold one value per child.
type Composite struct {
	ElementBase
	Elements ElementList `json:"elements"`
}

// Schema implements Element.
func (c *Composite) Schema() string { return SchemaElementComposite }

// NumElements returns the number of child elements.
func (c *Composite) NumElements() int { return len(c.Elements) }

// ValidLocations implements Element.
func (c *Composite) ValidLocations() []Location {
	return []Location{LocationElements}
}

// LocationLength implements Element.
func (c *Composite) LocationLength(loc Location) int {
	if loc == LocationElements {
		return c.NumElements()
	}
	return -1
}

// Validate implements Element.
func (c *Composite) Validate() error {
	var errs []error
	for i, child := range c.Elements {
		if err := child.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("elements[%d]: %w", i, err))
		}
	}
	errs = append(errs, validateElement(c))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: c.Name, Err: err}
	}
	return nil
}

func (c *Composite) payloads() []Payload {
	var out []Payload
	for _, child := range c.Elements {
		out = append(out, child.payloads()...)
	}
	return append(out, c.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (c *Composite) MarshalJSON() ([]byte, error) {
	type alias Composite
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{c.Schema(), (*alias)(c)})
}
