package slidedotnet

import (
	"fmt"
	"io"
	"strings"
)

// Open reads a PPTX file from disk with the default configuration.
func Open(path string) (*Presentation, error) {
	return OpenWithConfig(path, Config{})
}

// OpenWithConfig reads a PPTX file from disk.
func OpenWithConfig(path string, cfg Config) (*Presentation, error) {
	cfg.defaults()
	pkg, err := readPackageFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return newPresentation(pkg, cfg)
}

// ReadFrom reads a PPTX from an io.ReaderAt with the given size.
func ReadFrom(r io.ReaderAt, size int64) (*Presentation, error) {
	return ReadFromWithConfig(r, size, Config{})
}

// ReadFromWithConfig reads a PPTX from an io.ReaderAt with the given size.
func ReadFromWithConfig(r io.ReaderAt, size int64, cfg Config) (*Presentation, error) {
	cfg.defaults()
	pkg, err := readPackage(r, size, cfg)
	if err != nil {
		return nil, err
	}
	return newPresentation(pkg, cfg)
}

// Save writes the presentation, including every edit, to a PPTX file.
func (p *Presentation) Save(path string) error {
	return p.pkg.save(path)
}

// WriteTo writes the presentation to a writer in PPTX format.
func (p *Presentation) WriteTo(w io.Writer) error {
	return p.pkg.write(w)
}

// LayoutByName returns the first layout with the given name across all
// slide masters.
func (p *Presentation) LayoutByName(name string) (*SlideLayout, error) {
	masters, err := p.SlideMasters()
	if err != nil {
		return nil, err
	}
	for _, m := range masters {
		layouts, err := m.Layouts()
		if err != nil {
			return nil, err
		}
		for _, l := range layouts {
			if l.Name() == name {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("layout %q not found", name)
}

// ExtractText returns the text of every slide, one paragraph per line.
// Useful for search/indexing.
func (p *Presentation) ExtractText() (string, error) {
	slides, err := p.Slides()
	if err != nil {
		return "", err
	}
	var parts []string
	for _, s := range slides {
		shapes, err := s.Shapes()
		if err != nil {
			return "", err
		}
		parts = append(parts, extractShapesText(shapes.All())...)
	}
	return joinNonEmpty(parts, "\n"), nil
}

func extractShapesText(shapes []Shape) []string {
	var parts []string
	for _, sh := range shapes {
		switch v := sh.(type) {
		case *AutoShape:
			if tb := v.TextBox(); tb != nil {
				parts = append(parts, extractParagraphsText(tb.Paragraphs())...)
			}
		case *Table:
			for _, row := range v.Rows() {
				for _, c := range row.Cells() {
					if tb := c.TextBox(); tb != nil {
						parts = append(parts, extractParagraphsText(tb.Paragraphs())...)
					}
				}
			}
		case *Group:
			parts = append(parts, extractShapesText(v.Shapes().All())...)
		}
	}
	return parts
}

func extractParagraphsText(paragraphs []*Paragraph) []string {
	var parts []string
	for _, para := range paragraphs {
		if text := para.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return parts
}

func joinNonEmpty(parts []string, sep string) string {
	var result []string
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return strings.Join(result, sep)
}
