package slidedotnet

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Shape is the interface that all shapes implement.
type Shape interface {
	ID() int
	Name() string
	Hidden() bool
	X() int64
	Y() int64
	Width() int64
	Height() int64
	GeometryType() string
	Placeholder() *Placeholder
	Level() ShapeLevel
	CustomData() (string, bool)
	SetCustomData(value string)
	// base returns the underlying baseShape (unexported, internal use only).
	base() *baseShape
}

// ShapeLevel tells which kind of part holds a shape.
type ShapeLevel int

const (
	SlideLevel ShapeLevel = iota
	LayoutLevel
	MasterLevel
)

func (l ShapeLevel) String() string {
	switch l {
	case SlideLevel:
		return "slide"
	case LayoutLevel:
		return "layout"
	case MasterLevel:
		return "master"
	}
	return "ShapeLevel(" + strconv.Itoa(int(l)) + ")"
}

// baseShape holds what every shape variant shares: its element in the
// shape tree and the slide, layout or master that owns it.
type baseShape struct {
	el     *etree.Element
	owner  shapeTreeOwner
	parent *Group

	id     int
	name   string
	hidden bool

	placeholder *Lazy[*Placeholder]
}

func newBaseShape(el *etree.Element, owner shapeTreeOwner, parent *Group) baseShape {
	b := baseShape{el: el, owner: owner, parent: parent}
	b.placeholder = lazyOf(func() *Placeholder {
		if nv := nvPropsOf(el); nv != nil {
			return parsePlaceholder(nv.SelectElement("nvPr"))
		}
		return nil
	})
	return b
}

func (b *baseShape) base() *baseShape { return b }

// XML returns the shape element (p:sp, p:pic, p:graphicFrame or p:grpSp).
func (b *baseShape) XML() *etree.Element { return b.el }

// Parent returns the group holding the shape, or nil at the top level.
func (b *baseShape) Parent() *Group { return b.parent }

// Level returns whether the shape sits on a slide, layout or master.
func (b *baseShape) Level() ShapeLevel { return b.owner.shapeLevel() }

// Placeholder returns the placeholder role, or nil for ordinary shapes.
func (b *baseShape) Placeholder() *Placeholder { return b.placeholder.MustValue() }

func (b *baseShape) part() *Part { return b.owner.ownerPart() }

func (b *baseShape) nvProps() *etree.Element { return nvPropsOf(b.el) }

// nvPropsOf returns the non-visual properties element of a shape element:
// p:nvSpPr, p:nvPicPr, p:nvGraphicFramePr or p:nvGrpSpPr.
func nvPropsOf(el *etree.Element) *etree.Element {
	for _, c := range el.ChildElements() {
		if strings.HasPrefix(c.Tag, "nv") && strings.HasSuffix(c.Tag, "Pr") {
			return c
		}
	}
	return nil
}

func (b *baseShape) initIDHiddenName() {
	if b.id != 0 {
		return
	}
	nv := b.nvProps()
	if nv == nil {
		return
	}
	cNvPr := nv.SelectElement("cNvPr")
	if cNvPr == nil {
		return
	}
	b.id, _ = strconv.Atoi(cNvPr.SelectAttrValue("id", "0"))
	b.name = cNvPr.SelectAttrValue("name", "")
	b.hidden = parseXMLBool(cNvPr.SelectAttrValue("hidden", "0"))
}

// ID returns the identifier of the shape, unique within its shape tree.
func (b *baseShape) ID() int {
	b.initIDHiddenName()
	return b.id
}

// Name returns the display name of the shape.
func (b *baseShape) Name() string {
	b.initIDHiddenName()
	return b.name
}

// Hidden reports whether the shape is hidden.
func (b *baseShape) Hidden() bool {
	b.initIDHiddenName()
	return b.hidden
}

// --- Geometry ---

// xfrm returns the transform of the shape, or nil when it has none.
func (b *baseShape) xfrm() *etree.Element {
	switch b.el.Tag {
	case "graphicFrame":
		return b.el.SelectElement("xfrm")
	case "grpSp":
		return b.el.FindElement("./grpSpPr/xfrm")
	default:
		return b.el.FindElement("./spPr/xfrm")
	}
}

// transform returns the xfrm element used for geometry: the shape's own or,
// for a placeholder without one, the one it inherits.
func (b *baseShape) transform() *etree.Element {
	if x := b.xfrm(); x != nil {
		return x
	}
	if b.Placeholder() == nil {
		return nil
	}
	for cur := b; ; {
		up, err := inheritedShape(cur)
		if err != nil {
			b.owner.presentation().logger.Warn("failed to resolve inherited placeholder", "shape", b.Name(), "error", err)
			return nil
		}
		if up == nil {
			return nil
		}
		if x := up.base().xfrm(); x != nil {
			return x
		}
		cur = up.base()
	}
}

func (b *baseShape) geometry(child, attr string) int64 {
	x := b.transform()
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

// X returns the horizontal offset in EMU.
func (b *baseShape) X() int64 { return b.geometry("off", "x") }

// Y returns the vertical offset in EMU.
func (b *baseShape) Y() int64 { return b.geometry("off", "y") }

// Width returns the width in EMU.
func (b *baseShape) Width() int64 { return b.geometry("ext", "cx") }

// Height returns the height in EMU.
func (b *baseShape) Height() int64 { return b.geometry("ext", "cy") }

// ensureXfrm returns the shape's own transform, creating it when the shape
// only inherits one.
func (b *baseShape) ensureXfrm() *etree.Element {
	if x := b.xfrm(); x != nil {
		return x
	}
	inherited := b.transform()
	var x *etree.Element
	switch b.el.Tag {
	case "graphicFrame":
		x = etree.NewElement("p:xfrm")
		insertAfter(b.el, b.nvProps(), x)
	case "grpSp":
		x = etree.NewElement("a:xfrm")
		ensureChild(b.el, "grpSpPr", "p:grpSpPr", b.nvProps()).InsertChildAt(0, x)
	default:
		spPr := ensureChild(b.el, "spPr", "p:spPr", b.nvProps())
		x = etree.NewElement("a:xfrm")
		spPr.InsertChildAt(0, x)
	}
	off := x.CreateElement("a:off")
	ext := x.CreateElement("a:ext")
	for _, pair := range [][3]string{{"off", "x", "0"}, {"off", "y", "0"}, {"ext", "cx", "0"}, {"ext", "cy", "0"}} {
		v := pair[2]
		if inherited != nil {
			if src := inherited.SelectElement(pair[0]); src != nil {
				v = src.SelectAttrValue(pair[1], v)
			}
		}
		if pair[0] == "off" {
			off.CreateAttr(pair[1], v)
		} else {
			ext.CreateAttr(pair[1], v)
		}
	}
	return x
}

// SetPosition moves the shape. Coordinates are in EMU.
func (b *baseShape) SetPosition(x, y int64) {
	off := b.ensureXfrm().SelectElement("off")
	off.CreateAttr("x", strconv.FormatInt(x, 10))
	off.CreateAttr("y", strconv.FormatInt(y, 10))
	b.part().MarkDirty()
}

// SetSize resizes the shape. Dimensions are in EMU.
func (b *baseShape) SetSize(width, height int64) {
	ext := b.ensureXfrm().SelectElement("ext")
	ext.CreateAttr("cx", strconv.FormatInt(width, 10))
	ext.CreateAttr("cy", strconv.FormatInt(height, 10))
	b.part().MarkDirty()
}

// GeometryType returns the preset geometry name (for example "rect" or
// "ellipse"), "custom" for custom geometry, or "" when the shape has none.
func (b *baseShape) GeometryType() string {
	spPr := b.el.SelectElement("spPr")
	if spPr == nil {
		return ""
	}
	if prst := spPr.SelectElement("prstGeom"); prst != nil {
		return prst.SelectAttrValue("prst", "")
	}
	if spPr.SelectElement("custGeom") != nil {
		return "custom"
	}
	return ""
}

// --- Custom data ---

// CustomData returns the string stored with SetCustomData.
func (b *baseShape) CustomData() (string, bool) {
	el := b.el.SelectElement(customDataPrefix)
	if el == nil || el.Text() == "" {
		return "", false
	}
	return el.Text(), true
}

// SetCustomData attaches an arbitrary string to the shape. It is stored in a
// <ctd> element inside the shape element.
func (b *baseShape) SetCustomData(value string) {
	el := b.el.SelectElement(customDataPrefix)
	if el == nil {
		el = b.el.CreateElement(customDataPrefix)
	}
	el.SetText(value)
	b.part().MarkDirty()
}

// --- AutoShape ---

// AutoShape is a p:sp element: a preset or custom geometry that may carry
// text.
type AutoShape struct {
	baseShape
	textBox *Lazy[*TextBox]
	// levels maps 1-based paragraph levels to the font data of the shape's
	// own list style.
	levels *Lazy[map[int]FontData]
}

func newAutoShape(el *etree.Element, owner shapeTreeOwner, parent *Group) *AutoShape {
	a := &AutoShape{baseShape: newBaseShape(el, owner, parent)}
	a.textBox = lazyOf(func() *TextBox {
		txBody := el.SelectElement("txBody")
		if txBody == nil {
			return nil
		}
		return newTextBox(txBody, owner, a)
	})
	a.levels = lazyOf(a.parseLevels)
	return a
}

// TextBox returns the text of the shape, or nil when it has no p:txBody.
func (a *AutoShape) TextBox() *TextBox { return a.textBox.MustValue() }

// --- Picture ---

// Picture is a p:pic element.
type Picture struct {
	baseShape
}

func newPicture(el *etree.Element, owner shapeTreeOwner, parent *Group) *Picture {
	return &Picture{baseShape: newBaseShape(el, owner, parent)}
}

// Image returns the picture's image part.
func (p *Picture) Image() (*Image, error) {
	blip := p.el.FindElement("./blipFill/blip")
	if blip == nil {
		return nil, missingElement(p.part().Name(), "a:blip")
	}
	return newImage(p.part(), blip.SelectAttrValue("r:embed", ""))
}

// --- XML helpers ---

// ensureChild returns the child of parent with local name tag, creating it
// as fullTag right after the element after when missing.
func ensureChild(parent *etree.Element, tag, fullTag string, after *etree.Element) *etree.Element {
	if c := parent.SelectElement(tag); c != nil {
		return c
	}
	c := etree.NewElement(fullTag)
	insertAfter(parent, after, c)
	return c
}

// insertAfter inserts child into parent right after ref, or first when ref
// is nil.
func insertAfter(parent, ref, child *etree.Element) {
	if ref == nil || ref.Parent() != parent {
		parent.InsertChildAt(0, child)
		return
	}
	parent.InsertChildAt(ref.Index()+1, child)
}
