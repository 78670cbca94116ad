package omf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"

	"github.com/google/uuid"

	// Texture image formats: PNG from the standard library, TIFF and BMP
	// from golang.org/x/image.
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Image is an encoded texture image backed by a binary payload. PNG, TIFF
// and BMP are accepted.
type Image struct {
	UID  uuid.UUID
	Data []byte
}

// NewImage wraps encoded image bytes.
func NewImage(data []byte) *Image {
	return &Image{UID: uuid.New(), Data: data}
}

// Decode decodes the image payload.
func (img *Image) Decode() (image.Image, error) {
	if img.Data == nil {
		return nil, fmt.Errorf("image %s: %w", img.UID, ErrPayloadMissing)
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.UID, err)
	}
	return decoded, nil
}

// Validate checks that the payload decodes as a supported image format.
func (img *Image) Validate() error {
	if img.Data == nil {
		return fmt.Errorf("image %s: %w", img.UID, ErrPayloadMissing)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
		return fmt.Errorf("image %s: not a supported image: %w", img.UID, err)
	}
	return nil
}

// PayloadUID implements Payload.
func (img *Image) PayloadUID() uuid.UUID { return img.UID }

// PayloadBytes implements Payload.
func (img *Image) PayloadBytes() ([]byte, error) {
	if img.Data == nil {
		return nil, fmt.Errorf("image %s: %w", img.UID, ErrPayloadMissing)
	}
	return img.Data, nil
}

// AttachPayload implements Payload.
func (img *Image) AttachPayload(data []byte) error {
	img.Data = data
	return nil
}

type imageIndex struct {
	Schema string `json:"schema"`
	Size   int    `json:"size"`
	Array  string `json:"array"`
}

// MarshalJSON writes the image index entry.
func (img *Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageIndex{
		Schema: SchemaImage,
		Size:   len(img.Data),
		Array:  img.UID.String(),
	})
}

// UnmarshalJSON reads the image index entry. The payload must be attached
// separately with AttachPayload.
func (img *Image) UnmarshalJSON(b []byte) error {
	var idx imageIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return err
	}
	if idx.Schema != SchemaImage {
		return fmt.Errorf("%w: %q is not an image", ErrSchemaUnknown, idx.Schema)
	}
	uid, err := uuid.Parse(idx.Array)
	if err != nil {
		return fmt.Errorf("image uid: %w", err)
	}
	img.UID = uid
	img.Data = nil
	return nil
}

// Texture is the union of texture mappings: ProjectedTexture or
// UVMappedTexture.
type Texture interface {
	Schema() string

	// Validate checks the texture against the element's vertex count.
	Validate(numVertices int) error

	payloads() []Payload
}

// ProjectedTexture maps an image onto an element by orthogonal projection
// from a plane defined by an origin and two axes.
type ProjectedTexture struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Metadata    Metadata   `json:"metadata,omitempty"`
	Origin      [3]float64 `json:"origin"`
	AxisU       [3]float64 `json:"axis_u"`
	AxisV       [3]float64 `json:"axis_v"`
	Image       *Image     `json:"image"`
}

// Schema implements Texture.
func (t *ProjectedTexture) Schema() string { return SchemaTextureProjected }

// Validate implements Texture.
func (t *ProjectedTexture) Validate(numVertices int) error {
	if t.Image == nil {
		return fmt.Errorf("projected texture %q: image is required", t.Name)
	}
	if err := t.Image.Validate(); err != nil {
		return fmt.Errorf("projected texture %q: %w", t.Name, err)
	}
	if norm(t.AxisU) == 0 || norm(t.AxisV) == 0 {
		return fmt.Errorf("projected texture %q: axes must not be zero", t.Name)
	}
	return nil
}

func (t *ProjectedTexture) payloads() []Payload {
	if t.Image == nil {
		return nil
	}
	return []Payload{t.Image}
}

// MarshalJSON implements json.Marshaler.
func (t *ProjectedTexture) MarshalJSON() ([]byte, error) {
	type alias ProjectedTexture
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{t.Schema(), (*alias)(t)})
}

// UVMappedTexture maps an image onto an element with explicit per-vertex UV
// coordinates between 0 and 1.
type UVMappedTexture struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
	UV          *Array   `json:"uv"`
	Image       *Image   `json:"image"`
}

// Schema implements Texture.
func (t *UVMappedTexture) Schema() string { return SchemaTextureUV }

// Validate implements Texture.
func (t *UVMappedTexture) Validate(numVertices int) error {
	if t.Image == nil {
		return fmt.Errorf("uv texture %q: image is required", t.Name)
	}
	if err := t.Image.Validate(); err != nil {
		return fmt.Errorf("uv texture %q: %w", t.Name, err)
	}
	if t.UV == nil {
		return fmt.Errorf("uv texture %q: uv coordinates are required", t.Name)
	}
	if err := t.UV.Validate(); err != nil {
		return fmt.Errorf("uv texture %q: %w", t.Name, err)
	}
	if len(t.UV.Shape) != 2 || t.UV.Shape[1] != 2 {
		return fmt.Errorf("uv texture %q: uv must be Nx2, got shape %v", t.Name, t.UV.Shape)
	}
	if t.UV.Len() != numVertices {
		return fmt.Errorf("uv texture %q: uv length %d does not match vertex count %d", t.Name, t.UV.Len(), numVertices)
	}
	coords, err := t.UV.Floats()
	if err != nil {
		return fmt.Errorf("uv texture %q: %w", t.Name, err)
	}
	for _, c := range coords {
		if c < 0 || c > 1 {
			return fmt.Errorf("uv texture %q: uv values must be between 0 and 1, got %v", t.Name, c)
		}
	}
	return nil
}

func (t *UVMappedTexture) payloads() []Payload {
	p := collectPayloads(t.UV)
	if t.Image != nil {
		p = append(p, t.Image)
	}
	return p
}

// MarshalJSON implements json.Marshaler.
func (t *UVMappedTexture) MarshalJSON() ([]byte, error) {
	type alias UVMappedTexture
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{t.Schema(), (*alias)(t)})
}
