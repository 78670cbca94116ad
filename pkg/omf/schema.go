package omf

import (
	"encoding/json"
	"fmt"
)

// Schema identifiers for the concrete model types. Serialized objects carry
// their schema in a "schema" field and decoding dispatches on it.
const (
	SchemaProject = "org.omf.v2.project"

	SchemaElementPointSet          = "org.omf.v2.element.pointset"
	SchemaElementLineSet           = "org.omf.v2.element.lineset"
	SchemaElementSurface           = "org.omf.v2.element.surface"
	SchemaElementTensorGridSurface = "org.omf.v2.element.tensorgridsurface"
	SchemaElementBlockModel        = "org.omf.v2.element.blockmodel"
	SchemaElementComposite         = "org.omf.v2.element.composite"

	SchemaAttributeNumeric  = "org.omf.v2.attribute.numeric"
	SchemaAttributeVector   = "org.omf.v2.attribute.vector"
	SchemaAttributeString   = "org.omf.v2.attribute.string"
	SchemaAttributeCategory = "org.omf.v2.attribute.category"

	SchemaColormapContinuous = "org.omf.v2.colormap.scalar"
	SchemaColormapDiscrete   = "org.omf.v2.colormap.discrete"
	SchemaColormapCategory   = "org.omf.v2.colormap.category"

	SchemaGridRegular = "org.omf.v2.elements.blockmodel.grid.regular"
	SchemaGridTensor  = "org.omf.v2.elements.blockmodel.grid.tensor"

	SchemaSubblocksRegular  = "org.omf.v2.elements.blockmodel.subblocks.regular"
	SchemaSubblocksFreeform = "org.omf.v2.elements.blockmodel.subblocks.freeform"

	SchemaTextureProjected = "org.omf.v2.texture.projected"
	SchemaTextureUV        = "org.omf.v2.texture.uv"

	SchemaImage = "org.omf.v2.image"
)

func peekSchema(raw []byte) (string, error) {
	var probe struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", err
	}
	if probe.Schema == "" {
		return "", fmt.Errorf("%w: missing schema field", ErrSchemaUnknown)
	}
	return probe.Schema, nil
}

func unmarshalElement(raw json.RawMessage) (Element, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var e Element
	switch schema {
	case SchemaElementPointSet:
		e = &PointSet{}
	case SchemaElementLineSet:
		e = &LineSet{}
	case SchemaElementSurface:
		e = &Surface{}
	case SchemaElementTensorGridSurface:
		e = &TensorGridSurface{}
	case SchemaElementBlockModel:
		e = &BlockModel{}
	case SchemaElementComposite:
		e = &Composite{}
	default:
		return nil, fmt.Errorf("%w: %q is not an element", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalAttribute(raw json.RawMessage) (Attribute, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var a Attribute
	switch schema {
	case SchemaAttributeNumeric:
		a = &NumericAttribute{}
	case SchemaAttributeVector:
		a = &VectorAttribute{}
	case SchemaAttributeString:
		a = &StringAttribute{}
	case SchemaAttributeCategory:
		a = &CategoryAttribute{}
	default:
		return nil, fmt.Errorf("%w: %q is not an attribute", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, err
	}
	return a, nil
}

func unmarshalColormap(raw json.RawMessage) (Colormap, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var c Colormap
	switch schema {
	case SchemaColormapContinuous:
		c = &ContinuousColormap{}
	case SchemaColormapDiscrete:
		c = &DiscreteColormap{}
	default:
		return nil, fmt.Errorf("%w: %q is not a numeric colormap", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}

func unmarshalGrid(raw json.RawMessage) (Grid, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var g Grid
	switch schema {
	case SchemaGridRegular:
		g = &RegularGrid{}
	case SchemaGridTensor:
		g = &TensorGrid{}
	default:
		return nil, fmt.Errorf("%w: %q is not a block model grid", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, err
	}
	return g, nil
}

func unmarshalSubblocks(raw json.RawMessage) (Subblocks, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var s Subblocks
	switch schema {
	case SchemaSubblocksRegular:
		s = &RegularSubblocks{}
	case SchemaSubblocksFreeform:
		s = &FreeformSubblocks{}
	default:
		return nil, fmt.Errorf("%w: %q is not a sub-block container", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, err
	}
	return s, nil
}

func unmarshalTexture(raw json.RawMessage) (Texture, error) {
	schema, err := peekSchema(raw)
	if err != nil {
		return nil, err
	}
	var t Texture
	switch schema {
	case SchemaTextureProjected:
		t = &ProjectedTexture{}
	case SchemaTextureUV:
		t = &UVMappedTexture{}
	default:
		return nil, fmt.Errorf("%w: %q is not a texture", ErrSchemaUnknown, schema)
	}
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ElementList is a heterogeneous list of elements that decodes each entry by
// its schema field.
type ElementList []Element

// UnmarshalJSON implements json.Unmarshaler.
func (l *ElementList) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(ElementList, 0, len(raws))
	for i, raw := range raws {
		e, err := unmarshalElement(raw)
		if err != nil {
			return fmt.Errorf("elements[%d]: %w", i, err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

// AttributeList is a heterogeneous list of attributes that decodes each
// entry by its schema field.
type AttributeList []Attribute

// UnmarshalJSON implements json.Unmarshaler.
func (l *AttributeList) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(AttributeList, 0, len(raws))
	for i, raw := range raws {
		a, err := unmarshalAttribute(raw)
		if err != nil {
			return fmt.Errorf("attributes[%d]: %w", i, err)
		}
		out = append(out, a)
	}
	*l = out
	return nil
}

// TextureList is a heterogeneous list of textures that decodes each entry by
// its schema field.
type TextureList []Texture

// UnmarshalJSON implements json.Unmarshaler.
func (l *TextureList) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(TextureList, 0, len(raws))
	for i, raw := range raws {
		t, err := unmarshalTexture(raw)
		if err != nil {
			return fmt.Errorf("textures[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	*l = out
	return nil
}
