package omffile

import (
	"context"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/openmining/omf/pkg/omf"
)

// Save writes the project archive to path atomically. The file is written
// to a temp file first and renamed into place, so readers never observe a
// partially written archive.
func Save(ctx context.Context, p *omf.Project, path string) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("omffile: create pending file: %w", err)
	}
	defer pending.Cleanup()

	if err := Write(ctx, p, pending); err != nil {
		return err
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("omffile: replace %s: %w", path, err)
	}
	return nil
}

// Load reads a project archive from path.
func Load(ctx context.Context, path string) (*omf.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("omffile: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("omffile: %w", err)
	}

	return Read(ctx, f, info.Size())
}
