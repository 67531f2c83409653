// Package slidedotnet provides a lazy object model over PowerPoint
// presentation files (.pptx) following the Office Open XML (OOXML) standard.
//
// Slides, shapes, text, tables and charts are thin proxies over the XML of
// the package parts. They are materialized on first access, resolve inherited
// formatting across slide, layout and master, read chart data from inline
// caches or embedded workbooks, and write edits back into the XML so that
// Save persists them.
//
// See the Version variable for the current library version.
package slidedotnet

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/beevik/etree"
	"github.com/xuri/excelize/v2"
)

// Config controls how a presentation is opened.
type Config struct {
	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
	// MaxPartSize limits a single decompressed part (bytes).
	MaxPartSize int64
	// MaxPackageSize limits the archive and the sum of all parts (bytes).
	MaxPackageSize int64
	// MaxParts limits the number of archive entries.
	MaxParts int
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.MaxPartSize <= 0 {
		c.MaxPartSize = maxZipEntrySize
	}
	if c.MaxPackageSize <= 0 {
		c.MaxPackageSize = maxZipTotalSize
	}
	if c.MaxParts <= 0 {
		c.MaxParts = maxZipEntries
	}
}

// DefaultConfig returns the configuration used by Open and ReadFrom.
func DefaultConfig() Config {
	var c Config
	c.defaults()
	return c
}

// Presentation is an opened PPTX package.
type Presentation struct {
	cfg    Config
	logger *slog.Logger
	pkg    *Package
	main   *Part

	slides     *Lazy[[]*Slide]
	masters    *Lazy[[]*SlideMaster]
	properties *Lazy[*DocumentProperties]

	layoutByPart map[string]*SlideLayout
	masterByPart map[string]*SlideMaster

	// workbooks caches embedded workbooks by package part name.
	workbooks map[string]*excelize.File
}

func newPresentation(pkg *Package, cfg Config) (*Presentation, error) {
	main, err := pkg.Related(relTypeOfficeDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to locate presentation part: %w", err)
	}
	if _, err := main.XML(); err != nil {
		return nil, err
	}
	p := &Presentation{
		cfg:          cfg,
		logger:       cfg.Logger,
		pkg:          pkg,
		main:         main,
		layoutByPart: make(map[string]*SlideLayout),
		masterByPart: make(map[string]*SlideMaster),
		workbooks:    make(map[string]*excelize.File),
	}
	p.slides = NewLazy(p.loadSlides)
	p.masters = NewLazy(p.loadMasters)
	p.properties = NewLazy(p.loadProperties)
	return p, nil
}

// Package returns the underlying part graph.
func (p *Presentation) Package() *Package { return p.pkg }

func (p *Presentation) root() *etree.Element {
	doc, _ := p.main.XML()
	return doc.Root()
}

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() ([]*Slide, error) {
	return p.slides.Value()
}

// Slide returns the slide with the given 1-based number.
func (p *Presentation) Slide(number int) (*Slide, error) {
	slides, err := p.Slides()
	if err != nil {
		return nil, err
	}
	if number < 1 || number > len(slides) {
		return nil, fmt.Errorf("slide %d: %w", number, ErrOutOfRange)
	}
	return slides[number-1], nil
}

// SlideMasters returns the slide masters in presentation order.
func (p *Presentation) SlideMasters() ([]*SlideMaster, error) {
	return p.masters.Value()
}

// SlideWidth returns the slide width in EMU, or 0 when p:sldSz is absent.
func (p *Presentation) SlideWidth() int64 {
	return p.slideSize("cx")
}

// SlideHeight returns the slide height in EMU, or 0 when p:sldSz is absent.
func (p *Presentation) SlideHeight() int64 {
	return p.slideSize("cy")
}

func (p *Presentation) slideSize(attr string) int64 {
	sz := p.root().SelectElement("sldSz")
	if sz == nil {
		return 0
	}
	v, _ := strconv.ParseInt(sz.SelectAttrValue(attr, "0"), 10, 64)
	return v
}

func (p *Presentation) loadSlides() ([]*Slide, error) {
	var slides []*Slide
	lst := p.root().SelectElement("sldIdLst")
	if lst == nil {
		return slides, nil
	}
	for _, id := range lst.SelectElements("sldId") {
		rid := id.SelectAttrValue("r:id", "")
		part, err := p.main.RelatedByID(rid)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", rid, err)
		}
		s, err := newSlide(p, part, len(slides)+1)
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", part.Name(), err)
		}
		slides = append(slides, s)
	}
	return slides, nil
}

func (p *Presentation) loadMasters() ([]*SlideMaster, error) {
	var masters []*SlideMaster
	lst := p.root().SelectElement("sldMasterIdLst")
	if lst == nil {
		return masters, nil
	}
	for _, id := range lst.SelectElements("sldMasterId") {
		part, err := p.main.RelatedByID(id.SelectAttrValue("r:id", ""))
		if err != nil {
			return nil, fmt.Errorf("failed to read slide master: %w", err)
		}
		m, err := p.masterFor(part)
		if err != nil {
			return nil, err
		}
		masters = append(masters, m)
	}
	return masters, nil
}

// layoutFor returns the shared layout object of a layout part.
func (p *Presentation) layoutFor(part *Part) (*SlideLayout, error) {
	if l, ok := p.layoutByPart[part.Name()]; ok {
		return l, nil
	}
	l, err := newSlideLayout(p, part)
	if err != nil {
		return nil, fmt.Errorf("failed to read slide layout %s: %w", part.Name(), err)
	}
	p.layoutByPart[part.Name()] = l
	return l, nil
}

// masterFor returns the shared master object of a master part.
func (p *Presentation) masterFor(part *Part) (*SlideMaster, error) {
	if m, ok := p.masterByPart[part.Name()]; ok {
		return m, nil
	}
	m, err := newSlideMaster(p, part)
	if err != nil {
		return nil, fmt.Errorf("failed to read slide master %s: %w", part.Name(), err)
	}
	p.masterByPart[part.Name()] = m
	return m, nil
}

// defaultFontSize returns the presentation-wide size for a 1-based
// paragraph level from p:defaultTextStyle.
func (p *Presentation) defaultFontSize(level int) (int, bool) {
	style := p.root().SelectElement("defaultTextStyle")
	if style == nil {
		return 0, false
	}
	fd, ok := parseLevelStyles(style)[level]
	return fd.Size, ok
}

// Close releases the embedded workbooks opened while resolving charts.
// The presentation must not be used afterwards.
func (p *Presentation) Close() error {
	var errs []error
	for name, wb := range p.workbooks {
		if err := wb.Close(); err != nil {
			p.logger.Warn("failed to close embedded workbook", "part", name, "error", err)
			errs = append(errs, fmt.Errorf("failed to close workbook %s: %w", name, err))
		}
	}
	clear(p.workbooks)
	p.slides.Reset()
	p.masters.Reset()
	return errors.Join(errs...)
}
