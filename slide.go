package slidedotnet

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// shapeTreeOwner is a slide, slide layout or slide master: a part whose
// p:cSld/p:spTree holds shapes.
type shapeTreeOwner interface {
	ownerPart() *Part
	shapeLevel() ShapeLevel
	presentation() *Presentation
	// slideMaster returns the master the owner inherits from (itself for a
	// master).
	slideMaster() (*SlideMaster, error)
}

// shapeTree returns the p:spTree element of an owner part.
func shapeTree(part *Part) (*etree.Element, error) {
	doc, err := part.XML()
	if err != nil {
		return nil, err
	}
	tree := doc.Root().FindElement("./cSld/spTree")
	if tree == nil {
		return nil, missingElement(part.Name(), "p:spTree")
	}
	return tree, nil
}

// --- Slide ---

// Slide is one slide of a presentation.
type Slide struct {
	pres   *Presentation
	part   *Part
	number int
	shapes *Lazy[*Shapes]
	layout *Lazy[*SlideLayout]
	bg     *Lazy[*Image]
}

func newSlide(pres *Presentation, part *Part, number int) (*Slide, error) {
	if _, err := shapeTree(part); err != nil {
		return nil, err
	}
	s := &Slide{pres: pres, part: part, number: number}
	s.shapes = NewLazy(func() (*Shapes, error) { return buildShapeTree(s) })
	s.layout = NewLazy(s.loadLayout)
	s.bg = NewLazy(s.loadBackground)
	return s, nil
}

func (s *Slide) ownerPart() *Part            { return s.part }
func (s *Slide) shapeLevel() ShapeLevel      { return SlideLevel }
func (s *Slide) presentation() *Presentation { return s.pres }

func (s *Slide) slideMaster() (*SlideMaster, error) {
	l, err := s.Layout()
	if err != nil {
		return nil, err
	}
	return l.Master()
}

// Number returns the 1-based position of the slide.
func (s *Slide) Number() int { return s.number }

// Part returns the slide part.
func (s *Slide) Part() *Part { return s.part }

// Shapes returns the top-level shapes of the slide.
func (s *Slide) Shapes() (*Shapes, error) { return s.shapes.Value() }

// Layout returns the layout the slide is based on.
func (s *Slide) Layout() (*SlideLayout, error) { return s.layout.Value() }

func (s *Slide) loadLayout() (*SlideLayout, error) {
	part, err := s.part.Related(relTypeSlideLayout)
	if err != nil {
		return nil, err
	}
	return s.pres.layoutFor(part)
}

func (s *Slide) root() *etree.Element {
	doc, _ := s.part.XML()
	return doc.Root()
}

// Hidden reports whether the slide is excluded from the slide show.
func (s *Slide) Hidden() bool {
	return !parseXMLBool(s.root().SelectAttrValue("show", "1"))
}

// Hide excludes the slide from the slide show.
func (s *Slide) Hide() {
	s.root().CreateAttr("show", "0")
	s.part.MarkDirty()
}

// Background returns the picture used as slide background, or nil when the
// slide has no picture background of its own.
func (s *Slide) Background() (*Image, error) {
	return s.bg.Value()
}

func (s *Slide) loadBackground() (*Image, error) {
	blip := s.root().FindElement("./cSld/bg/bgPr/blipFill/blip")
	if blip == nil {
		return nil, nil
	}
	return newImage(s.part, blip.SelectAttrValue("r:embed", ""))
}

// CustomData returns the string stored with SetCustomData.
func (s *Slide) CustomData() (string, bool) {
	part := s.customDataPart()
	if part == nil {
		return "", false
	}
	return strings.TrimPrefix(string(part.Bytes()), customDataPrefix), true
}

// SetCustomData attaches an arbitrary string to the slide. It is kept in a
// custom XML part linked from the slide.
func (s *Slide) SetCustomData(value string) error {
	content := []byte(customDataPrefix + value)
	if part := s.customDataPart(); part != nil {
		part.SetBytes(content)
		return nil
	}
	name := s.pres.pkg.nextPartName("customXml/item%d.xml")
	if _, err := s.pres.pkg.AddPart(name, ctXML, content); err != nil {
		return fmt.Errorf("failed to store custom data of slide %d: %w", s.number, err)
	}
	if _, err := s.part.AddRelationship(relTypeCustomXML, name); err != nil {
		return fmt.Errorf("failed to store custom data of slide %d: %w", s.number, err)
	}
	return nil
}

func (s *Slide) customDataPart() *Part {
	parts, err := s.part.RelatedAll(relTypeCustomXML)
	if err != nil {
		s.pres.logger.Warn("failed to read custom XML relationships", "slide", s.number, "error", err)
		return nil
	}
	for _, p := range parts {
		if strings.HasPrefix(string(p.Bytes()), customDataPrefix) {
			return p
		}
	}
	return nil
}

// --- SlideLayout ---

// SlideLayout is a layout part shared by the slides based on it.
type SlideLayout struct {
	pres   *Presentation
	part   *Part
	shapes *Lazy[*Shapes]
	master *Lazy[*SlideMaster]
}

func newSlideLayout(pres *Presentation, part *Part) (*SlideLayout, error) {
	if _, err := shapeTree(part); err != nil {
		return nil, err
	}
	l := &SlideLayout{pres: pres, part: part}
	l.shapes = NewLazy(func() (*Shapes, error) { return buildShapeTree(l) })
	l.master = NewLazy(func() (*SlideMaster, error) {
		mp, err := part.Related(relTypeSlideMaster)
		if err != nil {
			return nil, err
		}
		return pres.masterFor(mp)
	})
	return l, nil
}

func (l *SlideLayout) ownerPart() *Part                   { return l.part }
func (l *SlideLayout) shapeLevel() ShapeLevel             { return LayoutLevel }
func (l *SlideLayout) presentation() *Presentation        { return l.pres }
func (l *SlideLayout) slideMaster() (*SlideMaster, error) { return l.Master() }

// Name returns the p:cSld@name of the layout.
func (l *SlideLayout) Name() string {
	doc, _ := l.part.XML()
	if cSld := doc.Root().SelectElement("cSld"); cSld != nil {
		return cSld.SelectAttrValue("name", "")
	}
	return ""
}

// Shapes returns the shapes of the layout.
func (l *SlideLayout) Shapes() (*Shapes, error) { return l.shapes.Value() }

// Master returns the slide master of the layout.
func (l *SlideLayout) Master() (*SlideMaster, error) { return l.master.Value() }

// --- SlideMaster ---

// SlideMaster is a master part with its layouts and default text styles.
type SlideMaster struct {
	pres    *Presentation
	part    *Part
	shapes  *Lazy[*Shapes]
	layouts *Lazy[[]*SlideLayout]
}

func newSlideMaster(pres *Presentation, part *Part) (*SlideMaster, error) {
	if _, err := shapeTree(part); err != nil {
		return nil, err
	}
	m := &SlideMaster{pres: pres, part: part}
	m.shapes = NewLazy(func() (*Shapes, error) { return buildShapeTree(m) })
	m.layouts = NewLazy(func() ([]*SlideLayout, error) {
		parts, err := part.RelatedAll(relTypeSlideLayout)
		if err != nil {
			return nil, err
		}
		layouts := make([]*SlideLayout, 0, len(parts))
		for _, lp := range parts {
			l, err := pres.layoutFor(lp)
			if err != nil {
				return nil, err
			}
			layouts = append(layouts, l)
		}
		return layouts, nil
	})
	return m, nil
}

func (m *SlideMaster) ownerPart() *Part                   { return m.part }
func (m *SlideMaster) shapeLevel() ShapeLevel             { return MasterLevel }
func (m *SlideMaster) presentation() *Presentation        { return m.pres }
func (m *SlideMaster) slideMaster() (*SlideMaster, error) { return m, nil }

// Shapes returns the shapes of the master.
func (m *SlideMaster) Shapes() (*Shapes, error) { return m.shapes.Value() }

// Layouts returns the layouts that belong to the master.
func (m *SlideMaster) Layouts() ([]*SlideLayout, error) { return m.layouts.Value() }

// textStyle returns the p:txStyles child used for a placeholder role:
// titleStyle, bodyStyle or otherStyle.
func (m *SlideMaster) textStyle(name string) *etree.Element {
	doc, err := m.part.XML()
	if err != nil {
		return nil
	}
	styles := doc.Root().SelectElement("txStyles")
	if styles == nil {
		return nil
	}
	return styles.SelectElement(name)
}

func parseXMLBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
