package omf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Location names where attribute values sit on an element's geometry.
type Location string

// Attribute locations. Each element type supports a subset; see the
// element's ValidLocations.
const (
	LocationVertices     Location = "vertices"
	LocationSegments     Location = "segments"
	LocationFaces        Location = "faces"
	LocationCells        Location = "cells"
	LocationParentBlocks Location = "parent_blocks"
	LocationSubblocks    Location = "subblocks"
	LocationElements     Location = "elements"
)

// Attribute is implemented by the four attribute kinds: NumericAttribute,
// VectorAttribute, StringAttribute and CategoryAttribute.
type Attribute interface {
	// Schema returns the attribute's schema identifier.
	Schema() string

	// Base returns the shared name/location/status fields.
	Base() *AttributeBase

	// Length returns the number of attribute values.
	Length() int

	// Validate checks the attribute in isolation. Location validity and
	// length against the element geometry are checked by the element.
	Validate() error

	payloads() []Payload
}

// AttributeBase holds the fields shared by every attribute kind.
//
// Status marks individual values as invalid: zero (or false) means valid,
// one means null, and statuses of two or more refer to an entry in
// StatusMessages explaining why the value is invalid. Invalid values stay in
// the value array so the two arrays are always the same length. When Status
// is nil all values are valid.
type AttributeBase struct {
	Name           string         `json:"name,omitempty"`
	Description    string         `json:"description,omitempty"`
	Metadata       Metadata       `json:"metadata,omitempty"`
	Location       Location       `json:"location"`
	Status         *Array         `json:"status,omitempty"`
	StatusMessages map[int]string `json:"status_messages,omitempty"`
}

// Base returns the shared attribute fields.
func (b *AttributeBase) Base() *AttributeBase { return b }

// ValidMask decodes the status array into a per-value validity mask. It
// returns nil when there is no status array, meaning all values are valid.
func (b *AttributeBase) ValidMask() ([]bool, error) {
	if b.Status == nil {
		return nil, nil
	}
	if b.Status.DataType == DataTypeBoolean {
		invalid, err := b.Status.Bools()
		if err != nil {
			return nil, err
		}
		mask := make([]bool, len(invalid))
		for i, v := range invalid {
			mask[i] = !v
		}
		return mask, nil
	}
	statuses, err := b.Status.Ints()
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(statuses))
	for i, s := range statuses {
		mask[i] = s == 0
	}
	return mask, nil
}

// validateBase checks metadata, the status array and the status messages
// against the attribute value count.
func (b *AttributeBase) validateBase(length int) error {
	if err := b.Metadata.validateScope(scopeAttribute); err != nil {
		return err
	}
	for status, message := range b.StatusMessages {
		switch {
		case status == 0:
			return fmt.Errorf("status 0 is reserved for valid values")
		case status == 1:
			return fmt.Errorf("status 1 is reserved for null values")
		case status < 0:
			return fmt.Errorf("statuses can't be negative")
		}
		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("status %d message can't be blank", status)
		}
	}
	if b.Status == nil {
		return nil
	}
	if len(b.Status.Shape) != 1 {
		return fmt.Errorf("status array must be 1D, got shape %v", b.Status.Shape)
	}
	if b.Status.Len() != length {
		return fmt.Errorf("status should have length %d to match array, not %d", length, b.Status.Len())
	}
	if b.Status.DataType == DataTypeBoolean {
		if _, err := b.Status.Bools(); err != nil {
			return err
		}
		return nil
	}
	statuses, err := b.Status.Ints()
	if err != nil {
		return err
	}
	var missing []int64
	for _, s := range statuses {
		if s < 0 {
			return fmt.Errorf("statuses can't be negative")
		}
		if s > 1 {
			if _, ok := b.StatusMessages[int(s)]; !ok {
				missing = append(missing, s)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d statuses without error messages, first %d", len(missing), missing[0])
	}
	return nil
}

// NumericAttribute holds scalar values with an optional continuous or
// discrete colormap.
type NumericAttribute struct {
	AttributeBase
	Array    *Array   `json:"array"`
	Colormap Colormap `json:"colormap,omitempty"`
}

// Schema implements Attribute.
func (a *NumericAttribute) Schema() string { return SchemaAttributeNumeric }

// Length implements Attribute.
func (a *NumericAttribute) Length() int {
	if a.Array == nil {
		return 0
	}
	return a.Array.Len()
}

// Validate implements Attribute.
func (a *NumericAttribute) Validate() error {
	if a.Array == nil {
		return fmt.Errorf("numeric attribute %q: array is required", a.Name)
	}
	if err := a.Array.Validate(); err != nil {
		return fmt.Errorf("numeric attribute %q: %w", a.Name, err)
	}
	if len(a.Array.Shape) != 1 {
		return fmt.Errorf("numeric attribute %q: values must be scalars, got shape %v", a.Name, a.Array.Shape)
	}
	if a.Array.DataType == DataTypeBoolean {
		return fmt.Errorf("numeric attribute %q: %w: boolean values are not scalars", a.Name, ErrDataTypeMismatch)
	}
	if a.Colormap != nil {
		if err := a.Colormap.Validate(); err != nil {
			return fmt.Errorf("numeric attribute %q: %w", a.Name, err)
		}
	}
	if err := a.validateBase(a.Length()); err != nil {
		return fmt.Errorf("numeric attribute %q: %w", a.Name, err)
	}
	return nil
}

// ValidValues returns only the values whose status marks them valid. The
// result is always a copy.
func (a *NumericAttribute) ValidValues() ([]float64, error) {
	values, err := a.Array.Floats()
	if err != nil {
		return nil, err
	}
	mask, err := a.ValidMask()
	if err != nil {
		return nil, err
	}
	if mask == nil {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if i < len(mask) && mask[i] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (a *NumericAttribute) payloads() []Payload {
	p := collectPayloads(a.Array, a.Status)
	if a.Colormap != nil {
		p = append(p, a.Colormap.payloads()...)
	}
	return p
}

// MarshalJSON implements json.Marshaler.
func (a *NumericAttribute) MarshalJSON() ([]byte, error) {
	type alias NumericAttribute
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{a.Schema(), (*alias)(a)})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching the colormap union
// by its schema.
func (a *NumericAttribute) UnmarshalJSON(b []byte) error {
	type alias NumericAttribute
	aux := struct {
		*alias
		Colormap json.RawMessage `json:"colormap"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.Colormap) > 0 && string(aux.Colormap) != "null" {
		cm, err := unmarshalColormap(aux.Colormap)
		if err != nil {
			return err
		}
		a.Colormap = cm
	}
	return nil
}

// VectorAttribute holds 2D or 3D vector values. Vectors cannot have a
// colormap.
type VectorAttribute struct {
	AttributeBase
	Array *Array `json:"array"`
}

// Schema implements Attribute.
func (a *VectorAttribute) Schema() string { return SchemaAttributeVector }

// Length implements Attribute.
func (a *VectorAttribute) Length() int {
	if a.Array == nil {
		return 0
	}
	return a.Array.Len()
}

// Validate implements Attribute.
func (a *VectorAttribute) Validate() error {
	if a.Array == nil {
		return fmt.Errorf("vector attribute %q: array is required", a.Name)
	}
	if err := a.Array.Validate(); err != nil {
		return fmt.Errorf("vector attribute %q: %w", a.Name, err)
	}
	if len(a.Array.Shape) != 2 || (a.Array.Shape[1] != 2 && a.Array.Shape[1] != 3) {
		return fmt.Errorf("vector attribute %q: vectors must be Nx2 or Nx3, got shape %v", a.Name, a.Array.Shape)
	}
	if a.Array.DataType == DataTypeBoolean {
		return fmt.Errorf("vector attribute %q: %w: boolean values are not vectors", a.Name, ErrDataTypeMismatch)
	}
	if err := a.validateBase(a.Length()); err != nil {
		return fmt.Errorf("vector attribute %q: %w", a.Name, err)
	}
	return nil
}

func (a *VectorAttribute) payloads() []Payload {
	return collectPayloads(a.Array, a.Status)
}

// MarshalJSON implements json.Marshaler.
func (a *VectorAttribute) MarshalJSON() ([]byte, error) {
	type alias VectorAttribute
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{a.Schema(), (*alias)(a)})
}

// StringAttribute holds arbitrary strings or datetimes. To use colors with
// strings, use CategoryAttribute instead.
type StringAttribute struct {
	AttributeBase
	Array *StringList `json:"array"`
}

// Schema implements Attribute.
func (a *StringAttribute) Schema() string { return SchemaAttributeString }

// Length implements Attribute.
func (a *StringAttribute) Length() int {
	if a.Array == nil {
		return 0
	}
	return a.Array.Len()
}

// Validate implements Attribute.
func (a *StringAttribute) Validate() error {
	if a.Array == nil {
		return fmt.Errorf("string attribute %q: array is required", a.Name)
	}
	if a.Array.Values == nil {
		return fmt.Errorf("string attribute %q: %w", a.Name, ErrPayloadMissing)
	}
	if err := a.validateBase(a.Length()); err != nil {
		return fmt.Errorf("string attribute %q: %w", a.Name, err)
	}
	return nil
}

// ValidValues returns only the values whose status marks them valid. The
// result is always a copy.
func (a *StringAttribute) ValidValues() ([]string, error) {
	mask, err := a.ValidMask()
	if err != nil {
		return nil, err
	}
	if mask == nil {
		out := make([]string, len(a.Array.Values))
		copy(out, a.Array.Values)
		return out, nil
	}
	out := make([]string, 0, len(a.Array.Values))
	for i, v := range a.Array.Values {
		if i < len(mask) && mask[i] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (a *StringAttribute) payloads() []Payload {
	p := []Payload{}
	if a.Array != nil {
		p = append(p, a.Array)
	}
	if a.Status != nil {
		p = append(p, a.Status)
	}
	return p
}

// MarshalJSON implements json.Marshaler.
func (a *StringAttribute) MarshalJSON() ([]byte, error) {
	type alias StringAttribute
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{a.Schema(), (*alias)(a)})
}

// CategoryAttribute holds indices into a category legend.
type CategoryAttribute struct {
	AttributeBase
	Array      *Array            `json:"array"`
	Categories *CategoryColormap `json:"categories"`
}

// Schema implements Attribute.
func (a *CategoryAttribute) Schema() string { return SchemaAttributeCategory }

// Length implements Attribute.
func (a *CategoryAttribute) Length() int {
	if a.Array == nil {
		return 0
	}
	return a.Array.Len()
}

// Validate implements Attribute.
func (a *CategoryAttribute) Validate() error {
	if a.Array == nil {
		return fmt.Errorf("category attribute %q: array is required", a.Name)
	}
	if err := a.Array.Validate(); err != nil {
		return fmt.Errorf("category attribute %q: %w", a.Name, err)
	}
	if len(a.Array.Shape) != 1 || !a.Array.DataType.integer() {
		return fmt.Errorf("category attribute %q: values must be a 1D integer array", a.Name)
	}
	if a.Categories == nil {
		return fmt.Errorf("category attribute %q: categories are required", a.Name)
	}
	if err := a.Categories.Validate(); err != nil {
		return fmt.Errorf("category attribute %q: %w", a.Name, err)
	}
	known := make(map[int64]struct{}, len(a.Categories.Indices))
	for _, idx := range a.Categories.Indices {
		known[idx] = struct{}{}
	}
	values, err := a.Array.Ints()
	if err != nil {
		return fmt.Errorf("category attribute %q: %w", a.Name, err)
	}
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("category attribute %q: negative index %d", a.Name, v)
		}
		if _, ok := known[v]; !ok {
			return fmt.Errorf("category attribute %q: index %d has no category value", a.Name, v)
		}
	}
	if err := a.validateBase(a.Length()); err != nil {
		return fmt.Errorf("category attribute %q: %w", a.Name, err)
	}
	return nil
}

func (a *CategoryAttribute) payloads() []Payload {
	return collectPayloads(a.Array, a.Status)
}

// MarshalJSON implements json.Marshaler.
func (a *CategoryAttribute) MarshalJSON() ([]byte, error) {
	type alias CategoryAttribute
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{a.Schema(), (*alias)(a)})
}

// collectPayloads gathers the non-nil arrays.
func collectPayloads(arrays ...*Array) []Payload {
	p := make([]Payload, 0, len(arrays))
	for _, a := range arrays {
		if a != nil {
			p = append(p, a)
		}
	}
	return p
}
