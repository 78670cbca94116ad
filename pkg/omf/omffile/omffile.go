// Package omffile reads and writes project archives.
//
// An archive is a ZIP container. The entry "index.json" holds the project
// document with every array reduced to an index entry, and each binary
// payload lives under "arrays/<uuid>". The ZIP comment carries the format
// identifier so tools can sniff archives without opening them.
package omffile

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/openmining/omf/pkg/omf"
)

const (
	// FormatIdentifier is stored as the ZIP comment of every archive.
	FormatIdentifier = "org.omf.v2"

	indexName   = "index.json"
	arrayPrefix = "arrays/"
)

// ErrFormat reports that a file is not a recognized project archive.
var ErrFormat = errors.New("omffile: not a project archive")

// Write validates the project and packs it with all payloads into w.
func Write(ctx context.Context, p *omf.Project, w io.Writer) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("omffile: validate: %w", err)
	}

	zw := zip.NewWriter(w)
	if err := zw.SetComment(FormatIdentifier); err != nil {
		return fmt.Errorf("omffile: %w", err)
	}

	index, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("omffile: encode index: %w", err)
	}
	entry, err := zw.Create(indexName)
	if err != nil {
		return fmt.Errorf("omffile: %w", err)
	}
	if _, err := entry.Write(index); err != nil {
		return fmt.Errorf("omffile: %w", err)
	}

	written := make(map[uuid.UUID]bool)
	for _, payload := range p.Payloads() {
		if err := ctx.Err(); err != nil {
			return err
		}

		uid := payload.PayloadUID()
		if written[uid] {
			continue
		}
		written[uid] = true

		data, err := payload.PayloadBytes()
		if err != nil {
			return fmt.Errorf("omffile: payload %s: %w", uid, err)
		}

		entry, err := zw.Create(arrayPrefix + uid.String())
		if err != nil {
			return fmt.Errorf("omffile: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("omffile: payload %s: %w", uid, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("omffile: %w", err)
	}
	return nil
}

// Read unpacks an archive, attaches every payload and validates the result.
func Read(ctx context.Context, r io.ReaderAt, size int64) (*omf.Project, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if zr.Comment != FormatIdentifier {
		return nil, fmt.Errorf("%w: comment %q", ErrFormat, zr.Comment)
	}

	project, err := readIndex(zr)
	if err != nil {
		return nil, err
	}

	payloads := make(map[uuid.UUID]omf.Payload)
	for _, payload := range project.Payloads() {
		payloads[payload.PayloadUID()] = payload
	}

	attached := make(map[uuid.UUID]bool)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(f.Name, arrayPrefix) {
			continue
		}

		uid, err := uuid.Parse(path.Base(f.Name))
		if err != nil {
			return nil, fmt.Errorf("omffile: entry %q: %w", f.Name, err)
		}
		payload, ok := payloads[uid]
		if !ok {
			// Archives may carry arrays no element references; skip them.
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("omffile: payload %s: %w", uid, err)
		}
		if err := payload.AttachPayload(data); err != nil {
			return nil, fmt.Errorf("omffile: %w", err)
		}
		attached[uid] = true
	}

	for uid := range payloads {
		if !attached[uid] {
			return nil, fmt.Errorf("omffile: %w: %s", omf.ErrPayloadMissing, uid)
		}
	}

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("omffile: validate: %w", err)
	}
	return project, nil
}

func readIndex(zr *zip.Reader) (*omf.Project, error) {
	f, err := zr.Open(indexName)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s", ErrFormat, indexName)
	}
	defer f.Close()

	var project omf.Project
	if err := json.NewDecoder(f).Decode(&project); err != nil {
		return nil, fmt.Errorf("omffile: decode index: %w", err)
	}
	return &project, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
