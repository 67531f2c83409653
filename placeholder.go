package slidedotnet

import (
	"strconv"

	"github.com/beevik/etree"
)

// PlaceholderType represents the type of placeholder.
type PlaceholderType string

const (
	PlaceholderTitle      PlaceholderType = "title"
	PlaceholderBody       PlaceholderType = "body"
	PlaceholderCtrTitle   PlaceholderType = "ctrTitle"
	PlaceholderSubTitle   PlaceholderType = "subTitle"
	PlaceholderDate       PlaceholderType = "dt"
	PlaceholderFooter     PlaceholderType = "ftr"
	PlaceholderSlideNum   PlaceholderType = "sldNum"
	PlaceholderHeader     PlaceholderType = "hdr"
	PlaceholderObject     PlaceholderType = "obj"
	PlaceholderChart      PlaceholderType = "chart"
	PlaceholderTable      PlaceholderType = "tbl"
	PlaceholderClipArt    PlaceholderType = "clipArt"
	PlaceholderDiagram    PlaceholderType = "dgm"
	PlaceholderMedia      PlaceholderType = "media"
	PlaceholderPicture    PlaceholderType = "pic"
	PlaceholderSlideImage PlaceholderType = "sldImg"
)

// Placeholder is the role of a placeholder shape. The type defaults to
// PlaceholderObject when p:ph carries no type attribute.
type Placeholder struct {
	Type     PlaceholderType
	Index    int
	HasIndex bool
}

// parsePlaceholder reads p:nvPr/p:ph. It returns nil for ordinary shapes.
func parsePlaceholder(nvPr *etree.Element) *Placeholder {
	if nvPr == nil {
		return nil
	}
	ph := nvPr.SelectElement("ph")
	if ph == nil {
		return nil
	}
	p := &Placeholder{Type: PlaceholderType(ph.SelectAttrValue("type", string(PlaceholderObject)))}
	if v := ph.SelectAttrValue("idx", ""); v != "" {
		if idx, err := strconv.Atoi(v); err == nil {
			p.Index = idx
			p.HasIndex = true
		}
	}
	return p
}

// masterRole folds a placeholder type onto the roles a slide master
// defines: centered titles use the title, subtitles and content use the body.
func masterRole(t PlaceholderType) PlaceholderType {
	switch t {
	case PlaceholderCtrTitle:
		return PlaceholderTitle
	case PlaceholderSubTitle, PlaceholderObject:
		return PlaceholderBody
	}
	return t
}

// textStyleName returns the p:txStyles child that formats text of the role.
func (p *Placeholder) textStyleName() string {
	switch masterRole(p.Type) {
	case PlaceholderTitle:
		return "titleStyle"
	case PlaceholderBody:
		return "bodyStyle"
	}
	return "otherStyle"
}

// findLayoutPlaceholder returns the layout shape a slide placeholder binds
// to: same index when the slide placeholder has one, otherwise same type.
func findLayoutPlaceholder(shapes *Shapes, ph *Placeholder) Shape {
	if ph.HasIndex {
		for _, s := range shapes.All() {
			if lp := s.Placeholder(); lp != nil && lp.HasIndex && lp.Index == ph.Index {
				return s
			}
		}
	}
	for _, s := range shapes.All() {
		if lp := s.Placeholder(); lp != nil && lp.Type == ph.Type {
			return s
		}
	}
	return nil
}

// findMasterPlaceholder returns the master shape with the same role.
func findMasterPlaceholder(shapes *Shapes, ph *Placeholder) Shape {
	role := masterRole(ph.Type)
	for _, s := range shapes.All() {
		if mp := s.Placeholder(); mp != nil && masterRole(mp.Type) == role {
			return s
		}
	}
	return nil
}

// inheritedShape returns the shape one level up that a placeholder inherits
// from. Slide placeholders bind to the layout and, when the layout has no
// match, directly to the master. Layout placeholders bind to the master.
// Master shapes and ordinary shapes inherit from nothing.
func inheritedShape(b *baseShape) (Shape, error) {
	ph := b.Placeholder()
	if ph == nil {
		return nil, nil
	}
	owner := b.owner
	if slide, ok := owner.(*Slide); ok {
		layout, err := slide.Layout()
		if err != nil {
			return nil, err
		}
		shapes, err := layout.Shapes()
		if err != nil {
			return nil, err
		}
		if match := findLayoutPlaceholder(shapes, ph); match != nil {
			return match, nil
		}
	}
	if owner.shapeLevel() == MasterLevel {
		return nil, nil
	}
	master, err := owner.slideMaster()
	if err != nil {
		return nil, err
	}
	shapes, err := master.Shapes()
	if err != nil {
		return nil, err
	}
	return findMasterPlaceholder(shapes, ph), nil
}
