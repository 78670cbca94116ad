package omf

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Color is an RGB triple. The JSON form is [r, g, b]; hex strings like
// "#ff8800" are accepted on decode.
type Color [3]uint8

// MarshalJSON writes the color as [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(c[0]), int(c[1]), int(c[2])})
}

// UnmarshalJSON reads either [r, g, b] or a "#rrggbb" hex string.
func (c *Color) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseColor(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var rgb [3]int
	if err := json.Unmarshal(b, &rgb); err != nil {
		return err
	}
	for _, v := range rgb {
		if v < 0 || v > 255 {
			return fmt.Errorf("color component %d out of range 0-255", v)
		}
	}
	*c = Color{uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])}
	return nil
}

// ParseColor parses a "#rrggbb" hex string.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Metadata is an arbitrary JSON-compatible dictionary attached to projects,
// elements and attributes. Any keys are allowed; a handful of well-known
// keys are validated when present.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetadataKeyDateCreated  = "date_created"
	MetadataKeyDateModified = "date_modified"
	MetadataKeyCRS          = "coordinate_reference_system"
	MetadataKeyAuthor       = "author"
	MetadataKeyRevision     = "revision"
	MetadataKeyDate         = "date"
	MetadataKeyColor        = "color"
	MetadataKeyOpacity      = "opacity"
	MetadataKeyUnits        = "units"
)

// metadataScope selects which well-known keys apply.
type metadataScope int

const (
	scopeProject metadataScope = iota
	scopeElement
	scopeAttribute
)

// Validate checks that the metadata is JSON-compatible. Well-known key
// checks are applied by the owning model's Validate.
func (m Metadata) Validate() error {
	if m == nil {
		return nil
	}
	if _, err := json.Marshal(m); err != nil {
		return fmt.Errorf("metadata is not JSON compatible: %w", err)
	}
	return nil
}

func (m Metadata) validateScope(scope metadataScope) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := m.checkDateTime(MetadataKeyDateCreated); err != nil {
		return err
	}
	if err := m.checkDateTime(MetadataKeyDateModified); err != nil {
		return err
	}
	switch scope {
	case scopeProject:
		for _, key := range []string{MetadataKeyCRS, MetadataKeyAuthor, MetadataKeyRevision} {
			if err := m.checkString(key); err != nil {
				return err
			}
		}
		if err := m.checkDateTime(MetadataKeyDate); err != nil {
			return err
		}
	case scopeElement:
		if err := m.checkString(MetadataKeyCRS); err != nil {
			return err
		}
		if err := m.checkColor(MetadataKeyColor); err != nil {
			return err
		}
		if err := m.checkOpacity(MetadataKeyOpacity); err != nil {
			return err
		}
	case scopeAttribute:
		if err := m.checkString(MetadataKeyUnits); err != nil {
			return err
		}
	}
	return nil
}

func (m Metadata) checkString(key string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("metadata key %q must be a string", key)
	}
	return nil
}

func (m Metadata) checkDateTime(key string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("metadata key %q must be an RFC 3339 string", key)
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return fmt.Errorf("metadata key %q: %w", key, err)
	}
	return nil
}

func (m Metadata) checkColor(key string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case string:
		if _, err := ParseColor(val); err != nil {
			return fmt.Errorf("metadata key %q: %w", key, err)
		}
	case []any:
		if len(val) != 3 {
			return fmt.Errorf("metadata key %q must be [r, g, b]", key)
		}
		for _, c := range val {
			f, ok := c.(float64)
			if !ok {
				if i, isInt := c.(int); isInt {
					f, ok = float64(i), true
				}
			}
			if !ok || f < 0 || f > 255 || f != float64(int(f)) {
				return fmt.Errorf("metadata key %q must hold integers 0-255", key)
			}
		}
	default:
		return fmt.Errorf("metadata key %q must be a hex string or [r, g, b]", key)
	}
	return nil
}

func (m Metadata) checkOpacity(key string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		if i, isInt := v.(int); isInt {
			f, ok = float64(i), true
		}
	}
	if !ok || f < 0 || f > 1 {
		return fmt.Errorf("metadata key %q must be a number between 0 and 1", key)
	}
	return nil
}

// Touch stamps date_created (first call) and date_modified, returning the
// map so callers can stamp a nil Metadata.
func (m Metadata) Touch(now time.Time) Metadata {
	if m == nil {
		m = Metadata{}
	}
	stamp := now.UTC().Format(time.RFC3339)
	if _, ok := m[MetadataKeyDateCreated]; !ok {
		m[MetadataKeyDateCreated] = stamp
	}
	m[MetadataKeyDateModified] = stamp
	return m
}
