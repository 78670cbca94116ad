package omffile

import (
	"context"
	"io"

	"github.com/openmining/omf/pkg/omf"
)

// Packer adapts the archive format to the catalog's Packer interface.
type Packer struct{}

// NewPacker creates a Packer for use with the catalog service.
func NewPacker() *Packer {
	return &Packer{}
}

func (Packer) Pack(ctx context.Context, p *omf.Project, w io.Writer) error {
	return Write(ctx, p, w)
}

func (Packer) Unpack(ctx context.Context, r io.ReaderAt, size int64) (*omf.Project, error) {
	return Read(ctx, r, size)
}
