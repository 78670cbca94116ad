package omf

import (
	"encoding/json"
	"fmt"
)

// Colormap is the union of colormaps accepted by NumericAttribute:
// ContinuousColormap or DiscreteColormap.
type Colormap interface {
	Schema() string
	Validate() error
	payloads() []Payload
}

// ContinuousColormap is a color gradient with min/max limits. Attribute
// values between the limits are colored along the gradient; values below
// and above the limits take the first and last gradient colors.
type ContinuousColormap struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Metadata    Metadata   `json:"metadata,omitempty"`
	Gradient    *Array     `json:"gradient"`
	Limits      [2]float64 `json:"limits"`
}

// Schema implements Colormap.
func (c *ContinuousColormap) Schema() string { return SchemaColormapContinuous }

// Validate implements Colormap.
func (c *ContinuousColormap) Validate() error {
	if c.Gradient == nil {
		return fmt.Errorf("continuous colormap: gradient is required")
	}
	if err := c.Gradient.Validate(); err != nil {
		return fmt.Errorf("continuous colormap: %w", err)
	}
	if len(c.Gradient.Shape) != 2 || c.Gradient.Shape[1] != 3 {
		return fmt.Errorf("continuous colormap: gradient must be Nx3, got shape %v", c.Gradient.Shape)
	}
	rows, err := c.Gradient.IntRows()
	if err != nil {
		return fmt.Errorf("continuous colormap: %w", err)
	}
	for _, row := range rows {
		for _, v := range row {
			if v < 0 || v > 255 {
				return fmt.Errorf("continuous colormap: gradient values must be RGB between 0 and 255")
			}
		}
	}
	if c.Limits[0] > c.Limits[1] {
		return fmt.Errorf("continuous colormap: limits[0] must be <= limits[1]")
	}
	return nil
}

func (c *ContinuousColormap) payloads() []Payload {
	return collectPayloads(c.Gradient)
}

// MarshalJSON implements json.Marshaler.
func (c *ContinuousColormap) MarshalJSON() ([]byte, error) {
	type alias ContinuousColormap
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{c.Schema(), (*alias)(c)})
}

// DiscreteColormap groups attribute values into n+1 intervals split at
// EndPoints, with one color per interval. EndInclusive controls whether a
// value equal to an end point falls in the lower (true) or upper (false)
// interval.
type DiscreteColormap struct {
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	EndPoints    []float64 `json:"end_points"`
	EndInclusive []bool    `json:"end_inclusive"`
	Colors       []Color   `json:"colors"`
}

// Schema implements Colormap.
func (c *DiscreteColormap) Schema() string { return SchemaColormapDiscrete }

// Validate implements Colormap.
func (c *DiscreteColormap) Validate() error {
	if len(c.Colors) == 0 {
		return fmt.Errorf("discrete colormap: at least one color is required")
	}
	if len(c.EndPoints) != len(c.EndInclusive) || len(c.Colors) != len(c.EndPoints)+1 {
		return fmt.Errorf("discrete colormap: colors length must be one greater than end_points and end_inclusive")
	}
	for i := 0; i+1 < len(c.EndPoints); i++ {
		if c.EndPoints[i+1] < c.EndPoints[i] {
			return fmt.Errorf("discrete colormap: end_points must be monotonically increasing")
		}
	}
	return nil
}

func (c *DiscreteColormap) payloads() []Payload { return nil }

// MarshalJSON implements json.Marshaler.
func (c *DiscreteColormap) MarshalJSON() ([]byte, error) {
	type alias DiscreteColormap
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{c.Schema(), (*alias)(c)})
}

// CategoryColormap maps attribute indices to category values and optional
// colors, forming a legend for CategoryAttribute.
type CategoryColormap struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
	Indices     []int64  `json:"indices"`
	Values      []string `json:"values"`
	Colors      []Color  `json:"colors,omitempty"`
}

// Schema returns the category colormap schema identifier.
func (c *CategoryColormap) Schema() string { return SchemaColormapCategory }

// Validate checks that indices, values and colors line up.
func (c *CategoryColormap) Validate() error {
	if len(c.Indices) != len(c.Values) {
		return fmt.Errorf("category colormap: indices and values must be the same length")
	}
	if c.Colors != nil && len(c.Colors) != len(c.Values) {
		return fmt.Errorf("category colormap: colors and values must be the same length")
	}
	seen := make(map[int64]struct{}, len(c.Indices))
	for _, idx := range c.Indices {
		if idx < 0 {
			return fmt.Errorf("category colormap: negative index %d", idx)
		}
		if _, dup := seen[idx]; dup {
			return fmt.Errorf("category colormap: duplicate index %d", idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *CategoryColormap) MarshalJSON() ([]byte, error) {
	type alias CategoryColormap
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{c.Schema(), (*alias)(c)})
}
