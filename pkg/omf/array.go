package omf

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// DataType identifies the element type of a binary-backed array.
type DataType string

// Numeric array data types. Payloads are little-endian; boolean arrays are
// bit-packed eight values per byte, most significant bit first.
const (
	DataTypeInt8    DataType = "Int8Array"
	DataTypeUint8   DataType = "Uint8Array"
	DataTypeInt16   DataType = "Int16Array"
	DataTypeUint16  DataType = "Uint16Array"
	DataTypeInt32   DataType = "Int32Array"
	DataTypeUint32  DataType = "Uint32Array"
	DataTypeInt64   DataType = "Int64Array"
	DataTypeUint64  DataType = "Uint64Array"
	DataTypeFloat32 DataType = "Float32Array"
	DataTypeFloat64 DataType = "Float64Array"
	DataTypeBoolean DataType = "BooleanArray"
)

// String list data types, reported by StringList based on its values.
const (
	DataTypeString   DataType = "StringArray"
	DataTypeDateTime DataType = "DateTimeArray"
)

func (d DataType) valid() bool {
	switch d {
	case DataTypeInt8, DataTypeUint8, DataTypeInt16, DataTypeUint16,
		DataTypeInt32, DataTypeUint32, DataTypeInt64, DataTypeUint64,
		DataTypeFloat32, DataTypeFloat64, DataTypeBoolean:
		return true
	}
	return false
}

func (d DataType) integer() bool {
	switch d {
	case DataTypeInt8, DataTypeUint8, DataTypeInt16, DataTypeUint16,
		DataTypeInt32, DataTypeUint32, DataTypeInt64, DataTypeUint64:
		return true
	}
	return false
}

// itemSize returns the packed size of a single value in bytes. Boolean
// arrays are bit-packed and handled separately.
func (d DataType) itemSize() int {
	switch d {
	case DataTypeInt8, DataTypeUint8:
		return 1
	case DataTypeInt16, DataTypeUint16:
		return 2
	case DataTypeInt32, DataTypeUint32, DataTypeFloat32:
		return 4
	case DataTypeInt64, DataTypeUint64, DataTypeFloat64:
		return 8
	}
	return 0
}

// Payload is a binary payload referenced from the serialized project index
// by UUID. Array, StringList and Image implement it; archive writers and
// blob-backed loaders move the bytes through this interface.
type Payload interface {
	// PayloadUID returns the key under which the bytes are stored.
	PayloadUID() uuid.UUID

	// PayloadBytes returns the packed bytes to persist.
	PayloadBytes() ([]byte, error)

	// AttachPayload restores the bytes after the index has been decoded.
	AttachPayload(data []byte) error
}

// Array is a 1D or 2D numeric array backed by a binary payload. The JSON
// form carries only the data type, shape, size and payload UUID; the packed
// bytes live in the Data field and are persisted separately.
type Array struct {
	UID      uuid.UUID
	DataType DataType
	Shape    []int
	Data     []byte
}

// SchemaArrayNumeric is the schema identifier for numeric arrays.
const SchemaArrayNumeric = "org.omf.v2.array.numeric"

func newArray(dataType DataType, shape []int, data []byte) *Array {
	return &Array{
		UID:      uuid.New(),
		DataType: dataType,
		Shape:    shape,
		Data:     data,
	}
}

// NewFloat64Array creates a 1D Float64Array.
func NewFloat64Array(values []float64) *Array {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	return newArray(DataTypeFloat64, []int{len(values)}, data)
}

// NewFloat32Array creates a 1D Float32Array.
func NewFloat32Array(values []float32) *Array {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return newArray(DataTypeFloat32, []int{len(values)}, data)
}

// NewInt64Array creates a 1D Int64Array.
func NewInt64Array(values []int64) *Array {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(data[i*8:], uint64(v))
	}
	return newArray(DataTypeInt64, []int{len(values)}, data)
}

// NewInt32Array creates a 1D Int32Array.
func NewInt32Array(values []int32) *Array {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
	}
	return newArray(DataTypeInt32, []int{len(values)}, data)
}

// NewBoolArray creates a 1D bit-packed BooleanArray.
func NewBoolArray(values []bool) *Array {
	data := packBits(values)
	return newArray(DataTypeBoolean, []int{len(values)}, data)
}

// NewVector2Array creates an Nx2 Float64Array, used for UV coordinates.
func NewVector2Array(vectors [][2]float64) *Array {
	data := make([]byte, 16*len(vectors))
	for i, v := range vectors {
		binary.LittleEndian.PutUint64(data[i*16:], math.Float64bits(v[0]))
		binary.LittleEndian.PutUint64(data[i*16+8:], math.Float64bits(v[1]))
	}
	return newArray(DataTypeFloat64, []int{len(vectors), 2}, data)
}

// NewVector3Array creates an Nx3 Float64Array, used for vertices and
// 3D vector attributes.
func NewVector3Array(vectors [][3]float64) *Array {
	data := make([]byte, 24*len(vectors))
	for i, v := range vectors {
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint64(data[i*24+j*8:], math.Float64bits(v[j]))
		}
	}
	return newArray(DataTypeFloat64, []int{len(vectors), 3}, data)
}

// NewIntRowsArray creates an NxW Int64Array from equal-width rows, used for
// segments, triangles, parent indices and sub-block corners.
func NewIntRowsArray(rows [][]int64) (*Array, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("array rows: %w", ErrEmptyArray)
	}
	width := len(rows[0])
	data := make([]byte, 8*width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("array rows: row %d has %d values, want %d", i, len(row), width)
		}
		for j, v := range row {
			binary.LittleEndian.PutUint64(data[(i*width+j)*8:], uint64(v))
		}
	}
	return newArray(DataTypeInt64, []int{len(rows), width}, data), nil
}

// NewFloatRowsArray creates an NxW Float64Array from equal-width rows.
func NewFloatRowsArray(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("array rows: %w", ErrEmptyArray)
	}
	width := len(rows[0])
	data := make([]byte, 8*width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("array rows: row %d has %d values, want %d", i, len(row), width)
		}
		for j, v := range row {
			binary.LittleEndian.PutUint64(data[(i*width+j)*8:], math.Float64bits(v))
		}
	}
	return newArray(DataTypeFloat64, []int{len(rows), width}, data), nil
}

// NewRGBArray creates an Nx3 Uint8Array of RGB values, used for colormap
// gradients.
func NewRGBArray(colors []Color) *Array {
	data := make([]byte, 3*len(colors))
	for i, c := range colors {
		data[i*3] = c[0]
		data[i*3+1] = c[1]
		data[i*3+2] = c[2]
	}
	return newArray(DataTypeUint8, []int{len(colors), 3}, data)
}

// Len returns the length of the first dimension.
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// Count returns the total number of values across all dimensions.
func (a *Array) Count() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	if len(a.Shape) == 0 {
		return 0
	}
	return n
}

// Size returns the packed payload size in bytes.
func (a *Array) Size() int {
	if a.DataType == DataTypeBoolean {
		return (a.Count() + 7) / 8
	}
	return a.Count() * a.DataType.itemSize()
}

// Validate checks the data type, shape and payload size.
func (a *Array) Validate() error {
	if !a.DataType.valid() {
		return fmt.Errorf("array %s: %w: %s", a.UID, ErrInvalidDataType, a.DataType)
	}
	if len(a.Shape) == 0 || len(a.Shape) > 2 {
		return fmt.Errorf("array %s: shape must be 1D or 2D, got %v", a.UID, a.Shape)
	}
	for _, s := range a.Shape {
		if s < 0 {
			return fmt.Errorf("array %s: negative shape %v", a.UID, a.Shape)
		}
	}
	if a.Data == nil {
		return fmt.Errorf("array %s: %w", a.UID, ErrPayloadMissing)
	}
	if len(a.Data) != a.Size() {
		return fmt.Errorf("array %s: payload is %d bytes, want %d", a.UID, len(a.Data), a.Size())
	}
	return nil
}

// Floats decodes any numeric array into flattened float64 values.
func (a *Array) Floats() ([]float64, error) {
	if a.DataType == DataTypeBoolean {
		return nil, fmt.Errorf("array %s: %w: boolean array has no float values", a.UID, ErrDataTypeMismatch)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	n := a.Count()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a.floatAt(i)
	}
	return out, nil
}

// Ints decodes any integer array into flattened int64 values.
func (a *Array) Ints() ([]int64, error) {
	if !a.DataType.integer() {
		return nil, fmt.Errorf("array %s: %w: %s is not an integer type", a.UID, ErrDataTypeMismatch, a.DataType)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	n := a.Count()
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		if a.DataType == DataTypeUint64 {
			u := binary.LittleEndian.Uint64(a.Data[i*8:])
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("array %s: uint64 value %d at index %d overflows int64", a.UID, u, i)
			}
		}
		out[i] = a.intAt(i)
	}
	return out, nil
}

// Bools decodes a boolean array.
func (a *Array) Bools() ([]bool, error) {
	if a.DataType != DataTypeBoolean {
		return nil, fmt.Errorf("array %s: %w: %s is not boolean", a.UID, ErrDataTypeMismatch, a.DataType)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return unpackBits(a.Data, a.Count()), nil
}

// FloatRows decodes a 2D numeric array into rows of float64 values.
func (a *Array) FloatRows() ([][]float64, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("array %s: want 2D shape, got %v", a.UID, a.Shape)
	}
	flat, err := a.Floats()
	if err != nil {
		return nil, err
	}
	return reshape(flat, a.Shape[0], a.Shape[1]), nil
}

// IntRows decodes a 2D integer array into rows of int64 values.
func (a *Array) IntRows() ([][]int64, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("array %s: want 2D shape, got %v", a.UID, a.Shape)
	}
	flat, err := a.Ints()
	if err != nil {
		return nil, err
	}
	return reshape(flat, a.Shape[0], a.Shape[1]), nil
}

func reshape[T any](flat []T, rows, cols int) [][]T {
	out := make([][]T, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols]
	}
	return out
}

func (a *Array) floatAt(i int) float64 {
	switch a.DataType {
	case DataTypeFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(a.Data[i*8:]))
	case DataTypeFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(a.Data[i*4:])))
	case DataTypeUint64:
		return float64(binary.LittleEndian.Uint64(a.Data[i*8:]))
	default:
		return float64(a.intAt(i))
	}
}

func (a *Array) intAt(i int) int64 {
	switch a.DataType {
	case DataTypeInt8:
		return int64(int8(a.Data[i]))
	case DataTypeUint8:
		return int64(a.Data[i])
	case DataTypeInt16:
		return int64(int16(binary.LittleEndian.Uint16(a.Data[i*2:])))
	case DataTypeUint16:
		return int64(binary.LittleEndian.Uint16(a.Data[i*2:]))
	case DataTypeInt32:
		return int64(int32(binary.LittleEndian.Uint32(a.Data[i*4:])))
	case DataTypeUint32:
		return int64(binary.LittleEndian.Uint32(a.Data[i*4:]))
	case DataTypeInt64, DataTypeUint64:
		return int64(binary.LittleEndian.Uint64(a.Data[i*8:]))
	}
	return 0
}

// PayloadUID implements Payload.
func (a *Array) PayloadUID() uuid.UUID { return a.UID }

// PayloadBytes implements Payload.
func (a *Array) PayloadBytes() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a.Data, nil
}

// AttachPayload implements Payload.
func (a *Array) AttachPayload(data []byte) error {
	if len(data) != a.Size() {
		return fmt.Errorf("array %s: payload is %d bytes, want %d", a.UID, len(data), a.Size())
	}
	a.Data = data
	return nil
}

type arrayIndex struct {
	Schema   string   `json:"schema"`
	DataType DataType `json:"data_type"`
	Shape    []int    `json:"shape"`
	Size     int      `json:"size"`
	Array    string   `json:"array"`
}

// MarshalJSON writes the array index entry. The payload is not included; it
// is persisted under the array UUID by the archive writer.
func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(arrayIndex{
		Schema:   SchemaArrayNumeric,
		DataType: a.DataType,
		Shape:    a.Shape,
		Size:     a.Size(),
		Array:    a.UID.String(),
	})
}

// UnmarshalJSON reads the array index entry. The payload must be attached
// separately with AttachPayload.
func (a *Array) UnmarshalJSON(b []byte) error {
	var idx arrayIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return err
	}
	if idx.Schema != SchemaArrayNumeric {
		return fmt.Errorf("%w: %q is not a numeric array", ErrSchemaUnknown, idx.Schema)
	}
	if !idx.DataType.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDataType, idx.DataType)
	}
	uid, err := uuid.Parse(idx.Array)
	if err != nil {
		return fmt.Errorf("array uid: %w", err)
	}
	a.UID = uid
	a.DataType = idx.DataType
	a.Shape = idx.Shape
	a.Data = nil
	return nil
}

// packBits packs booleans eight per byte, most significant bit first.
func packBits(values []bool) []byte {
	data := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			data[i/8] |= 1 << (7 - uint(i)%8)
		}
	}
	return data
}

func unpackBits(data []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = data[i/8]&(1<<(7-uint(i)%8)) != 0
	}
	return out
}

// SchemaArrayString is the schema identifier for string lists.
const SchemaArrayString = "org.omf.v2.array.string"

// StringList is a list of strings or RFC 3339 datetimes backed by a binary
// payload holding the JSON-encoded values.
type StringList struct {
	UID    uuid.UUID
	Values []string
}

// NewStringList creates a StringList from values.
func NewStringList(values []string) *StringList {
	return &StringList{UID: uuid.New(), Values: values}
}

// Len returns the number of values.
func (l *StringList) Len() int { return len(l.Values) }

// DataType reports DateTimeArray when every value parses as RFC 3339, and
// StringArray otherwise.
func (l *StringList) DataType() DataType {
	if len(l.Values) == 0 {
		return DataTypeString
	}
	for _, v := range l.Values {
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			return DataTypeString
		}
	}
	return DataTypeDateTime
}

// PayloadUID implements Payload.
func (l *StringList) PayloadUID() uuid.UUID { return l.UID }

// PayloadBytes implements Payload.
func (l *StringList) PayloadBytes() ([]byte, error) {
	if l.Values == nil {
		return nil, fmt.Errorf("string list %s: %w", l.UID, ErrPayloadMissing)
	}
	return json.Marshal(l.Values)
}

// AttachPayload implements Payload.
func (l *StringList) AttachPayload(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("string list %s: %w", l.UID, err)
	}
	l.Values = values
	return nil
}

// MarshalJSON writes the string list index entry.
func (l *StringList) MarshalJSON() ([]byte, error) {
	payload, err := l.PayloadBytes()
	if err != nil {
		return nil, err
	}
	return json.Marshal(arrayIndex{
		Schema:   SchemaArrayString,
		DataType: l.DataType(),
		Shape:    []int{len(l.Values)},
		Size:     len(payload),
		Array:    l.UID.String(),
	})
}

// UnmarshalJSON reads the string list index entry. Values must be attached
// separately with AttachPayload.
func (l *StringList) UnmarshalJSON(b []byte) error {
	var idx arrayIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return err
	}
	if idx.Schema != SchemaArrayString {
		return fmt.Errorf("%w: %q is not a string array", ErrSchemaUnknown, idx.Schema)
	}
	uid, err := uuid.Parse(idx.Array)
	if err != nil {
		return fmt.Errorf("string list uid: %w", err)
	}
	l.UID = uid
	l.Values = nil
	return nil
}
