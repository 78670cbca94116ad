package omf

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Grid is the union of block model grid definitions: RegularGrid or
// TensorGrid.
type Grid interface {
	Schema() string

	// ParentCount returns the number of parent blocks along each axis.
	ParentCount() [3]int

	Validate() error
}

// RegularGrid divides the block model into uniform blocks.
type RegularGrid struct {
	Count [3]int     `json:"block_count"`
	Size  [3]float64 `json:"block_size"`
}

// Schema implements Grid.
func (g *RegularGrid) Schema() string { return SchemaGridRegular }

// ParentCount implements Grid.
func (g *RegularGrid) ParentCount() [3]int { return g.Count }

// Validate implements Grid.
func (g *RegularGrid) Validate() error {
	for _, c := range g.Count {
		if c < 1 {
			return fmt.Errorf("regular grid: block counts must be >= 1, got %v", g.Count)
		}
	}
	for _, s := range g.Size {
		if s <= 0 {
			return fmt.Errorf("regular grid: block sizes must be greater than zero, got %v", g.Size)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (g *RegularGrid) MarshalJSON() ([]byte, error) {
	type alias RegularGrid
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{g.Schema(), (*alias)(g)})
}

// TensorGrid divides the block model with per-axis spacing arrays.
type TensorGrid struct {
	TensorU []float64 `json:"tensor_u"`
	TensorV []float64 `json:"tensor_v"`
	TensorW []float64 `json:"tensor_w"`
}

// Schema implements Grid.
func (g *TensorGrid) Schema() string { return SchemaGridTensor }

// ParentCount implements Grid.
func (g *TensorGrid) ParentCount() [3]int {
	return [3]int{len(g.TensorU), len(g.TensorV), len(g.TensorW)}
}

// Validate implements Grid.
func (g *TensorGrid) Validate() error {
	for _, tensor := range [][]float64{g.TensorU, g.TensorV, g.TensorW} {
		if len(tensor) == 0 {
			return fmt.Errorf("tensor grid: spacing arrays must not be empty")
		}
		for _, size := range tensor {
			if size <= 0 {
				return fmt.Errorf("tensor grid: cell sizes must be greater than zero, got %v", size)
			}
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (g *TensorGrid) MarshalJSON() ([]byte, error) {
	type alias TensorGrid
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{g.Schema(), (*alias)(g)})
}

// SubblockMode constrains the placement of regular sub-blocks.
type SubblockMode string

// Regular sub-block modes. In octree mode sub-blocks form a modified octree
// and all sub-block counts must be powers of two. In full mode parent blocks
// are either fully sub-blocked or not sub-blocked at all.
const (
	SubblockModeOctree SubblockMode = "octree"
	SubblockModeFull   SubblockMode = "full"
)

// Subblocks is the union of sub-block containers: RegularSubblocks or
// FreeformSubblocks.
type Subblocks interface {
	Schema() string

	// NumSubblocks returns the total number of sub-blocks.
	NumSubblocks() int

	// Validate checks the sub-blocks against the parent grid dimensions.
	Validate(parentCount [3]int) error

	payloads() []Payload
}

// RegularSubblocks divides each parent block into a regular grid of
// SubblockCount cells. ParentIndices rows are IJK indices on the block model
// grid; Corners rows are (i_min, j_min, k_min, i_max, j_max, k_max) integer
// positions on the sub-block grid within the parent. Sub-blocks must stay
// inside their parent and have non-zero size in all directions.
type RegularSubblocks struct {
	SubblockCount [3]int       `json:"subblock_count"`
	Mode          SubblockMode `json:"mode,omitempty"`
	ParentIndices *Array       `json:"parent_indices"`
	Corners       *Array       `json:"corners"`
}

// Schema implements Subblocks.
func (s *RegularSubblocks) Schema() string { return SchemaSubblocksRegular }

// NumSubblocks implements Subblocks.
func (s *RegularSubblocks) NumSubblocks() int {
	if s.Corners == nil {
		return 0
	}
	return s.Corners.Len()
}

// Validate implements Subblocks.
func (s *RegularSubblocks) Validate(parentCount [3]int) error {
	for _, c := range s.SubblockCount {
		if c < 1 {
			return fmt.Errorf("regular sub-blocks: sub-block counts must be >= 1, got %v", s.SubblockCount)
		}
	}
	switch s.Mode {
	case "", SubblockModeFull:
	case SubblockModeOctree:
		for _, c := range s.SubblockCount {
			if c&(c-1) != 0 {
				return fmt.Errorf("regular sub-blocks: in octree mode sub-block counts must be powers of two, got %v",
					s.SubblockCount)
			}
		}
	default:
		return fmt.Errorf("regular sub-blocks: unknown mode %q", s.Mode)
	}
	_, corners, err := subblockRows(s.ParentIndices, s.Corners, parentCount)
	if err != nil {
		return fmt.Errorf("regular sub-blocks: %w", err)
	}
	for i, corner := range corners {
		for axis := 0; axis < 3; axis++ {
			lo, hi := corner[axis], corner[axis+3]
			if lo < 0 || hi > int64(s.SubblockCount[axis]) || lo >= hi {
				return fmt.Errorf("regular sub-blocks: corners[%d] %v is outside the %v sub-block grid",
					i, corner, s.SubblockCount)
			}
		}
		if s.Mode == SubblockModeFull && !fullOrUnit(corner, s.SubblockCount) {
			return fmt.Errorf("regular sub-blocks: in full mode corners[%d] %v must cover the whole parent or a single cell",
				i, corner)
		}
	}
	return nil
}

// fullOrUnit reports whether a corner row covers the whole parent block or
// exactly one sub-block cell.
func fullOrUnit(corner []int64, count [3]int) bool {
	full, unit := true, true
	for axis := 0; axis < 3; axis++ {
		lo, hi := corner[axis], corner[axis+3]
		if lo != 0 || hi != int64(count[axis]) {
			full = false
		}
		if hi-lo != 1 {
			unit = false
		}
	}
	return full || unit
}

func (s *RegularSubblocks) payloads() []Payload {
	return collectPayloads(s.ParentIndices, s.Corners)
}

// MarshalJSON implements json.Marshaler.
func (s *RegularSubblocks) MarshalJSON() ([]byte, error) {
	type alias RegularSubblocks
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{s.Schema(), (*alias)(s)})
}

// FreeformSubblocks places arbitrary boxes inside parent blocks. Corners
// rows are (i_min, j_min, k_min, i_max, j_max, k_max) in floating point,
// running from 0.0 to 1.0 across the parent block.
type FreeformSubblocks struct {
	ParentIndices *Array `json:"parent_indices"`
	Corners       *Array `json:"corners"`
}

// Schema implements Subblocks.
func (s *FreeformSubblocks) Schema() string { return SchemaSubblocksFreeform }

// NumSubblocks implements Subblocks.
func (s *FreeformSubblocks) NumSubblocks() int {
	if s.Corners == nil {
		return 0
	}
	return s.Corners.Len()
}

// Validate implements Subblocks.
func (s *FreeformSubblocks) Validate(parentCount [3]int) error {
	if s.ParentIndices == nil || s.Corners == nil {
		return fmt.Errorf("freeform sub-blocks: parent_indices and corners are required")
	}
	if err := checkParentIndices(s.ParentIndices, s.Corners.Len(), parentCount); err != nil {
		return fmt.Errorf("freeform sub-blocks: %w", err)
	}
	if err := s.Corners.Validate(); err != nil {
		return fmt.Errorf("freeform sub-blocks: corners: %w", err)
	}
	if len(s.Corners.Shape) != 2 || s.Corners.Shape[1] != 6 {
		return fmt.Errorf("freeform sub-blocks: corners must be Nx6, got shape %v", s.Corners.Shape)
	}
	corners, err := s.Corners.FloatRows()
	if err != nil {
		return fmt.Errorf("freeform sub-blocks: corners: %w", err)
	}
	for i, corner := range corners {
		for axis := 0; axis < 3; axis++ {
			lo, hi := corner[axis], corner[axis+3]
			if lo < 0 || hi > 1 || lo >= hi {
				return fmt.Errorf("freeform sub-blocks: corners[%d] %v must satisfy 0 <= min < max <= 1", i, corner)
			}
		}
	}
	return nil
}

func (s *FreeformSubblocks) payloads() []Payload {
	return collectPayloads(s.ParentIndices, s.Corners)
}

// MarshalJSON implements json.Marshaler.
func (s *FreeformSubblocks) MarshalJSON() ([]byte, error) {
	type alias FreeformSubblocks
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{s.Schema(), (*alias)(s)})
}

// subblockRows validates the shared parent/corner structure of integer
// sub-blocks and returns the decoded rows.
func subblockRows(parentIndices, corners *Array, parentCount [3]int) ([][]int64, [][]int64, error) {
	if parentIndices == nil || corners == nil {
		return nil, nil, fmt.Errorf("parent_indices and corners are required")
	}
	if err := checkParentIndices(parentIndices, corners.Len(), parentCount); err != nil {
		return nil, nil, err
	}
	if err := corners.Validate(); err != nil {
		return nil, nil, fmt.Errorf("corners: %w", err)
	}
	if len(corners.Shape) != 2 || corners.Shape[1] != 6 || !corners.DataType.integer() {
		return nil, nil, fmt.Errorf("corners must be an Nx6 integer array, got %s %v", corners.DataType, corners.Shape)
	}
	parents, err := parentIndices.IntRows()
	if err != nil {
		return nil, nil, fmt.Errorf("parent_indices: %w", err)
	}
	cornerRows, err := corners.IntRows()
	if err != nil {
		return nil, nil, fmt.Errorf("corners: %w", err)
	}
	return parents, cornerRows, nil
}

// checkParentIndices validates an Nx3 integer array of parent IJK indices.
func checkParentIndices(a *Array, wantLen int, parentCount [3]int) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("parent_indices: %w", err)
	}
	if len(a.Shape) != 2 || a.Shape[1] != 3 || !a.DataType.integer() {
		return fmt.Errorf("parent_indices must be an Nx3 integer array, got %s %v", a.DataType, a.Shape)
	}
	if a.Len() != wantLen {
		return fmt.Errorf("parent_indices length %d does not match corners length %d", a.Len(), wantLen)
	}
	rows, err := a.IntRows()
	if err != nil {
		return fmt.Errorf("parent_indices: %w", err)
	}
	for i, row := range rows {
		for axis := 0; axis < 3; axis++ {
			if row[axis] < 0 || row[axis] >= int64(parentCount[axis]) {
				return fmt.Errorf("parent_indices[%d] %v is outside the %v block grid", i, row, parentCount)
			}
		}
	}
	return nil
}

// BlockModel is a 3D block model with an oriented grid and optional
// sub-blocks. Attribute values at parent_blocks are stored flattened with
// the I index varying fastest, then J, then K; sub-block attribute values
// follow the order of the sub-block corner rows.
type BlockModel struct {
	ElementBase
	Origin    [3]float64 `json:"origin"`
	AxisU     [3]float64 `json:"axis_u"`
	AxisV     [3]float64 `json:"axis_v"`
	AxisW     [3]float64 `json:"axis_w"`
	Grid      Grid       `json:"grid"`
	Subblocks Subblocks  `json:"subblocks,omitempty"`
}

// NewBlockModel creates a block model with the given grid and the default
// axis-aligned orientation.
func NewBlockModel(grid Grid) *BlockModel {
	return &BlockModel{
		AxisU: [3]float64{1, 0, 0},
		AxisV: [3]float64{0, 1, 0},
		AxisW: [3]float64{0, 0, 1},
		Grid:  grid,
	}
}

// Schema implements Element.
func (b *BlockModel) Schema() string { return SchemaElementBlockModel }

// NumParentBlocks returns the total number of parent blocks.
func (b *BlockModel) NumParentBlocks() int {
	if b.Grid == nil {
		return 0
	}
	count := b.Grid.ParentCount()
	return count[0] * count[1] * count[2]
}

// NumSubblocks returns the total number of sub-blocks, or zero when the
// model is not sub-blocked.
func (b *BlockModel) NumSubblocks() int {
	if b.Subblocks == nil {
		return 0
	}
	return b.Subblocks.NumSubblocks()
}

// ValidLocations implements Element.
func (b *BlockModel) ValidLocations() []Location {
	locs := []Location{LocationParentBlocks}
	if b.Subblocks != nil {
		locs = append(locs, LocationSubblocks)
	}
	return locs
}

// LocationLength implements Element.
func (b *BlockModel) LocationLength(loc Location) int {
	switch loc {
	case LocationParentBlocks:
		return b.NumParentBlocks()
	case LocationSubblocks:
		if b.Subblocks != nil {
			return b.NumSubblocks()
		}
	}
	return -1
}

// Validate implements Element.
func (b *BlockModel) Validate() error {
	var errs []error
	if b.Grid == nil {
		errs = append(errs, fmt.Errorf("grid is required"))
	} else {
		if err := b.Grid.Validate(); err != nil {
			errs = append(errs, err)
		}
		if err := checkAxes(b.AxisU, b.AxisV, b.AxisW); err != nil {
			errs = append(errs, err)
		}
		if b.Subblocks != nil {
			if err := b.Subblocks.Validate(b.Grid.ParentCount()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	errs = append(errs, validateElement(b))
	if err := errors.Join(errs...); err != nil {
		return &ValidationError{Name: b.Name, Err: err}
	}
	return nil
}

// checkAxes requires non-zero, mutually orthogonal orientation axes.
func checkAxes(u, v, w [3]float64) error {
	const tol = 1e-9
	axes := [][3]float64{u, v, w}
	names := []string{"axis_u", "axis_v", "axis_w"}
	for i, a := range axes {
		if norm(a) < tol {
			return fmt.Errorf("%s must not be zero", names[i])
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(dot(axes[i], axes[j]))/(norm(axes[i])*norm(axes[j])) > 1e-6 {
				return fmt.Errorf("%s and %s must be orthogonal", names[i], names[j])
			}
		}
	}
	return nil
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}

func (b *BlockModel) payloads() []Payload {
	var out []Payload
	if b.Subblocks != nil {
		out = append(out, b.Subblocks.payloads()...)
	}
	return append(out, b.attributePayloads()...)
}

// MarshalJSON implements json.Marshaler.
func (b *BlockModel) MarshalJSON() ([]byte, error) {
	type alias BlockModel
	return json.Marshal(struct {
		Schema string `json:"schema"`
		*alias
	}{b.Schema(), (*alias)(b)})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching the grid and
// sub-block unions by their schema.
func (b *BlockModel) UnmarshalJSON(data []byte) error {
	type alias BlockModel
	aux := struct {
		*alias
		Grid      json.RawMessage `json:"grid"`
		Subblocks json.RawMessage `json:"subblocks"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Grid) > 0 && string(aux.Grid) != "null" {
		grid, err := unmarshalGrid(aux.Grid)
		if err != nil {
			return err
		}
		b.Grid = grid
	}
	if len(aux.Subblocks) > 0 && string(aux.Subblocks) != "null" {
		sub, err := unmarshalSubblocks(aux.Subblocks)
		if err != nil {
			return err
		}
		b.Subblocks = sub
	}
	return nil
}
