package omf

import (
	"errors"
	"fmt"
	"slices"
)

// Element is implemented by every project element type: PointSet, LineSet,
// Surface, TensorGridSurface, BlockModel and Composite.
type Element interface {
	// Schema returns the element's schema identifier.
	Schema() string

	// Base returns the shared name/metadata/attribute fields.
	Base() *ElementBase

	// ValidLocations lists the attribute locations the element supports.
	ValidLocations() []Location

	// LocationLength returns the required attribute length for a location,
	// or -1 for unsupported locations.
	LocationLength(loc Location) int

	// Validate checks the element geometry, textures and attributes.
	Validate() error

	payloads() []Payload
}

// ElementBase holds the fields shared by every element type.
type ElementBase struct {
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Metadata    Metadata      `json:"metadata,omitempty"`
	Attributes  AttributeList `json:"attributes,omitempty"`
}

// Base returns the shared element fields.
func (b *ElementBase) Base() *ElementBase { return b }

// validateElement runs the checks common to all elements: metadata keys,
// and each attribute's own validity plus its location and length against
// the element geometry.
func validateElement(e Element) error {
	base := e.Base()
	var errs []error
	if err := base.Metadata.validateScope(scopeElement); err != nil {
		errs = append(errs, err)
	}
	valid := e.ValidLocations()
	for i, attr := range base.Attributes {
		if err := attr.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("attributes[%d]: %w", i, err))
			continue
		}
		loc := attr.Base().Location
		if !slices.Contains(valid, loc) {
			errs = append(errs, fmt.Errorf("attributes[%d] (%s): %w: %s not in %v",
				i, attr.Base().Name, ErrInvalidLocation, loc, valid))
			continue
		}
		if want := e.LocationLength(loc); attr.Length() != want {
			errs = append(errs, fmt.Errorf("attributes[%d] (%s): %w: length %d does not match %s length %d",
				i, attr.Base().Name, ErrLengthMismatch, attr.Length(), loc, want))
		}
	}
	return errors.Join(errs...)
}

// attributePayloads gathers the payloads of all attributes on an element.
func (b *ElementBase) attributePayloads() []Payload {
	var p []Payload
	for _, attr := range b.Attributes {
		p = append(p, attr.payloads()...)
	}
	return p
}

// checkIndexArray validates an NxW integer connectivity array whose values
// index into a pool of limit entries (vertices, typically).
func checkIndexArray(a *Array, width, limit int, what string) error {
	if a == nil {
		return fmt.Errorf("%s are required", what)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if len(a.Shape) != 2 || a.Shape[1] != width || !a.DataType.integer() {
		return fmt.Errorf("%s must be an Nx%d integer array, got %s %v", what, width, a.DataType, a.Shape)
	}
	values, err := a.Ints()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	for _, v := range values {
		if v < 0 || v >= int64(limit) {
			return fmt.Errorf("%s index %d is outside the vertex range [0, %d)", what, v, limit)
		}
	}
	return nil
}

// checkVertexArray validates an Nx3 floating-point geometry array.
func checkVertexArray(a *Array, what string) error {
	if a == nil {
		return fmt.Errorf("%s are required", what)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if len(a.Shape) != 2 || a.Shape[1] != 3 {
		return fmt.Errorf("%s must be an Nx3 array, got shape %v", what, a.Shape)
	}
	if a.DataType != DataTypeFloat64 && a.DataType != DataTypeFloat32 {
		return fmt.Errorf("%s must be floating point, got %s", what, a.DataType)
	}
	return nil
}
