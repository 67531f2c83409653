package slidedotnet

import (
	"github.com/beevik/etree"
)

// Shapes is an ordered, read-only collection of shapes.
type Shapes struct {
	items []Shape
}

// Len returns the number of shapes.
func (s *Shapes) Len() int { return len(s.items) }

// At returns the shape at index, or nil when index is out of range.
func (s *Shapes) At(index int) Shape {
	if index < 0 || index >= len(s.items) {
		return nil
	}
	return s.items[index]
}

// All returns the shapes in document order.
func (s *Shapes) All() []Shape { return s.items }

// ByID returns the shape with the given id, searching groups recursively.
func (s *Shapes) ByID(id int) (Shape, bool) {
	for _, sh := range s.items {
		if sh.ID() == id {
			return sh, true
		}
		if g, ok := sh.(*Group); ok {
			if found, ok := g.Shapes().ByID(id); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// ByName returns the first shape with the given name, searching groups
// recursively.
func (s *Shapes) ByName(name string) (Shape, bool) {
	for _, sh := range s.items {
		if sh.Name() == name {
			return sh, true
		}
		if g, ok := sh.(*Group); ok {
			if found, ok := g.Shapes().ByName(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// buildShapeTree materializes the top-level shapes of a slide, layout or
// master.
func buildShapeTree(owner shapeTreeOwner) (*Shapes, error) {
	tree, err := shapeTree(owner.ownerPart())
	if err != nil {
		return nil, err
	}
	return buildShapes(tree, owner, nil), nil
}

// buildShapes turns the children of a p:spTree or p:grpSp into shapes.
// Children no variant recognizes are skipped; children that look like a
// known variant but are malformed are skipped with a warning so their
// siblings still build.
func buildShapes(container *etree.Element, owner shapeTreeOwner, parent *Group) *Shapes {
	logger := owner.presentation().logger
	out := &Shapes{}
	for _, child := range container.ChildElements() {
		sh, err := buildShape(child, owner, parent)
		if err != nil {
			logger.Warn("malformed shape omitted", "part", owner.ownerPart().Name(), "element", child.FullTag(), "error", err)
			continue
		}
		if sh == nil {
			if child.Tag != "nvGrpSpPr" && child.Tag != "grpSpPr" && child.Tag != "extLst" {
				logger.Debug("shape tree child skipped", "part", owner.ownerPart().Name(), "element", child.FullTag())
			}
			continue
		}
		out.items = append(out.items, sh)
	}
	return out
}

// buildShape returns the variant for one shape tree child, or nil when the
// element is not a supported shape.
func buildShape(el *etree.Element, owner shapeTreeOwner, parent *Group) (Shape, error) {
	switch el.Tag {
	case "sp":
		return newAutoShape(el, owner, parent), nil
	case "pic":
		return newPicture(el, owner, parent), nil
	case "grpSp":
		return newGroup(el, owner, parent), nil
	case "graphicFrame":
		return buildGraphicFrame(el, owner, parent)
	case "AlternateContent":
		if choice := alternateContentChoice(el); choice != nil {
			return buildShape(choice, owner, parent)
		}
	}
	return nil, nil
}

// buildGraphicFrame picks the variant of a p:graphicFrame from its
// a:graphicData@uri.
func buildGraphicFrame(el *etree.Element, owner shapeTreeOwner, parent *Group) (Shape, error) {
	data := el.FindElement("./graphic/graphicData")
	if data == nil {
		return nil, missingElement(owner.ownerPart().Name(), "a:graphicData")
	}
	switch data.SelectAttrValue("uri", "") {
	case uriChart:
		return newChart(el, owner, parent)
	case uriTable:
		return newTable(el, owner, parent)
	case uriOLE:
		return newOLEObject(el, owner, parent)
	}
	return nil, nil
}

// alternateContentChoice returns the shape element inside
// mc:AlternateContent: the first mc:Choice holding one, else mc:Fallback.
func alternateContentChoice(el *etree.Element) *etree.Element {
	for _, branch := range []string{"Choice", "Fallback"} {
		for _, b := range el.SelectElements(branch) {
			for _, c := range b.ChildElements() {
				switch c.Tag {
				case "sp", "pic", "grpSp", "graphicFrame":
					return c
				}
			}
		}
	}
	return nil
}
