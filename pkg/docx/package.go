// Package docx provides structural access to OOXML (.docx) packages: a
// part model over the ZIP container, heading style resolution, and a
// single-pass structural mapping of the document body.
//
// A package is a ZIP archive of named XML parts. Package keeps the raw bytes
// of every entry, lazily parses individual parts into etree documents, and
// serializes back to bytes with unmodified entries copied verbatim.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MainDocumentPart is the ZIP entry holding the document body.
const MainDocumentPart = "word/document.xml"

// StylesPart is the ZIP entry holding paragraph/character style definitions.
const StylesPart = "word/styles.xml"

// SettingsPart is the ZIP entry holding document-level settings.
const SettingsPart = "word/settings.xml"

// ContentTypesPart is the ZIP entry declaring part content types.
const ContentTypesPart = "[Content_Types].xml"

var (
	// ErrPartNotFound is returned when a named part is absent from the package.
	ErrPartNotFound = errors.New("part not found in package")
	// ErrNoBody is returned when the main document part lacks a body element.
	ErrNoBody = errors.New("document has no body element")
)

// part holds both the raw bytes and the lazily parsed DOM for one ZIP entry.
type part struct {
	raw   []byte
	doc   *etree.Document
	dirty bool
}

// Package provides lazy, cached access to the XML parts of a DOCX package.
type Package struct {
	id     string
	parts  map[string]*part
	logger *zap.Logger
}

// OpenBytes parses a DOCX package from raw bytes. It fails fast when the
// data is not a ZIP archive or the main document part is missing.
func OpenBytes(data []byte, logger *zap.Logger) (*Package, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	parts := make(map[string]*part, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		parts[f.Name] = &part{raw: raw}
	}

	if _, ok := parts[MainDocumentPart]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, MainDocumentPart)
	}

	return &Package{
		id:     uuid.New().String(),
		parts:  parts,
		logger: logger,
	}, nil
}

// OpenFile reads and parses a DOCX package from disk.
func OpenFile(path string, logger *zap.Logger) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return OpenBytes(data, logger)
}

// ID returns the instance identifier minted when the package was opened.
// It appears in log output so concurrent generations can be told apart.
func (p *Package) ID() string { return p.id }

// Has reports whether the package contains a part with the given name.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Part returns the parsed XML document for a part name. It parses on first
// access and caches the result.
func (p *Package) Part(name string) (*etree.Document, error) {
	pt, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPartNotFound, name)
	}
	if pt.doc != nil {
		return pt.doc, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(pt.raw); err != nil {
		return nil, fmt.Errorf("parse part %s: %w", name, err)
	}
	pt.doc = doc
	return doc, nil
}

// AddPart inserts (or replaces) a part with the given raw bytes. The part is
// parsed lazily like any other.
func (p *Package) AddPart(name string, raw []byte) {
	p.parts[name] = &part{raw: raw, dirty: true}
}

// MarkDirty marks a part as modified so Save re-serializes it from the
// cached DOM instead of copying the original bytes.
func (p *Package) MarkDirty(name string) {
	if pt, ok := p.parts[name]; ok {
		pt.dirty = true
	}
}

// Body returns the body element of the main document part. The returned
// element is live: mutations become part of the serialized output once the
// main document part is marked dirty.
func (p *Package) Body() (*etree.Element, error) {
	doc, err := p.Part(MainDocumentPart)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoBody
	}
	body := Child(root, "body")
	if body == nil {
		return nil, ErrNoBody
	}
	return body, nil
}

// PartNames returns all part names in the package, sorted.
func (p *Package) PartNames() []string {
	names := make([]string, 0, len(p.parts))
	for name := range p.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bytes serializes the package back to DOCX bytes. Dirty parts are written
// from their cached DOM; everything else is copied verbatim.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range p.PartNames() {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}

		pt := p.parts[name]
		if pt.dirty && pt.doc != nil {
			data, err := pt.doc.WriteToBytes()
			if err != nil {
				return nil, fmt.Errorf("serialize %s: %w", name, err)
			}
			if _, err := w.Write(data); err != nil {
				return nil, fmt.Errorf("write %s: %w", name, err)
			}
			continue
		}
		if _, err := w.Write(pt.raw); err != nil {
			return nil, fmt.Errorf("copy %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile serializes the package and writes it to disk. The write goes to a
// temp file first and is renamed into place, so the target is never left
// half-written.
func (p *Package) SaveFile(path string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".docx-save-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
