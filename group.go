package slidedotnet

import (
	"strconv"

	"github.com/beevik/etree"
)

// Group is a p:grpSp element owning an ordered sequence of child shapes.
type Group struct {
	baseShape
	shapes *Lazy[*Shapes]
}

func newGroup(el *etree.Element, owner shapeTreeOwner, parent *Group) *Group {
	g := &Group{baseShape: newBaseShape(el, owner, parent)}
	g.shapes = lazyOf(func() *Shapes { return buildShapes(el, owner, g) })
	return g
}

// Shapes returns the child shapes of the group.
func (g *Group) Shapes() *Shapes { return g.shapes.MustValue() }

// ShapeCount returns the number of child shapes in the group.
func (g *Group) ShapeCount() int { return g.Shapes().Len() }

// ChildOffset returns the origin of the child coordinate space (a:chOff).
func (g *Group) ChildOffset() (x, y int64) {
	return g.childGeometry("chOff", "x"), g.childGeometry("chOff", "y")
}

// ChildExtent returns the size of the child coordinate space (a:chExt).
func (g *Group) ChildExtent() (cx, cy int64) {
	return g.childGeometry("chExt", "cx"), g.childGeometry("chExt", "cy")
}

func (g *Group) childGeometry(child, attr string) int64 {
	x := g.xfrm()
	if x == nil {
		return 0
	}
	el := x.SelectElement(child)
	if el == nil {
		return 0
	}
	v, _ := strconv.ParseInt(el.SelectAttrValue(attr, "0"), 10, 64)
	return v
}

// RemoveShape removes the child at index from the group and its XML.
func (g *Group) RemoveShape(index int) error {
	shapes := g.Shapes()
	if index < 0 || index >= shapes.Len() {
		return ErrOutOfRange
	}
	g.el.RemoveChild(shapes.At(index).base().el)
	g.part().MarkDirty()
	g.shapes.Reset()
	return nil
}
