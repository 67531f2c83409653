package slidedotnet

import (
	"strings"

	"github.com/beevik/etree"
)

// Color is an ARGB colour or a reference to a theme colour.
type Color struct {
	ARGB string // 8-character hex string, e.g., "FF000000" for black
	// Scheme names a theme colour (a:schemeClr@val) such as "accent1".
	// ARGB is empty in that case.
	Scheme string
}

// NewColor creates a new Color from an ARGB hex string.
// Accepts 6-char RGB (e.g. "FF0000") or 8-char ARGB (e.g. "FFFF0000").
// A leading "#" is stripped automatically.
func NewColor(argb string) Color {
	argb = strings.TrimPrefix(argb, "#")
	if len(argb) == 6 {
		argb = "FF" + argb
	}
	argb = strings.ToUpper(argb)
	if !isValidARGB(argb) {
		return Color{ARGB: "FF000000"} // fallback to black
	}
	return Color{ARGB: argb}
}

// isValidARGB checks that s is exactly 8 upper-case hex characters.
func isValidARGB(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// RGB returns the 6-character hex form used by a:srgbClr@val.
func (c Color) RGB() string {
	if len(c.ARGB) != 8 {
		return ""
	}
	return c.ARGB[2:]
}

// Red returns the red component (0-255).
func (c Color) Red() uint8 { return parseHexByte(c.ARGB, 2) }

// Green returns the green component (0-255).
func (c Color) Green() uint8 { return parseHexByte(c.ARGB, 4) }

// Blue returns the blue component (0-255).
func (c Color) Blue() uint8 { return parseHexByte(c.ARGB, 6) }

// parseHexByte parses two hex characters at offset into a uint8.
// Returns 0 on any error (out of range, invalid chars).
func parseHexByte(s string, offset int) uint8 {
	if offset+2 > len(s) {
		return 0
	}
	h := hexVal(s[offset])
	l := hexVal(s[offset+1])
	if h < 0 || l < 0 {
		return 0
	}
	return uint8(h<<4 | l)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// colorOf reads the first a:srgbClr or a:schemeClr child of el.
func colorOf(el *etree.Element) (Color, bool) {
	if el == nil {
		return Color{}, false
	}
	if c := el.SelectElement("srgbClr"); c != nil {
		return NewColor(c.SelectAttrValue("val", "")), true
	}
	if c := el.SelectElement("schemeClr"); c != nil {
		return Color{Scheme: c.SelectAttrValue("val", "")}, true
	}
	return Color{}, false
}

// FillType represents the type of fill.
type FillType int

const (
	FillNone FillType = iota
	FillSolid
	FillGradient
	FillPicture
	FillPattern
)

// ShapeFill is the fill of an auto shape's a:spPr.
type ShapeFill struct {
	shape *AutoShape
	el    *etree.Element

	Type  FillType
	Color Color
	// EndColor is the last gradient stop for gradient fills.
	EndColor Color
}

// fillTags are the fill choices of a:spPr, in schema order.
var fillTags = []string{"noFill", "solidFill", "gradFill", "blipFill", "pattFill", "grpFill"}

// Fill returns the fill the shape defines itself, or nil when it has none
// and the fill comes from its style or placeholder.
func (a *AutoShape) Fill() *ShapeFill {
	spPr := a.el.SelectElement("spPr")
	if spPr == nil {
		return nil
	}
	for _, tag := range fillTags {
		el := spPr.SelectElement(tag)
		if el == nil {
			continue
		}
		f := &ShapeFill{shape: a, el: el}
		switch tag {
		case "noFill", "grpFill":
			f.Type = FillNone
		case "solidFill":
			f.Type = FillSolid
			f.Color, _ = colorOf(el)
		case "gradFill":
			f.Type = FillGradient
			if stops := el.FindElements("./gsLst/gs"); len(stops) > 0 {
				f.Color, _ = colorOf(stops[0])
				f.EndColor, _ = colorOf(stops[len(stops)-1])
			}
		case "blipFill":
			f.Type = FillPicture
		case "pattFill":
			f.Type = FillPattern
			f.Color, _ = colorOf(el.SelectElement("fgClr"))
		}
		return f
	}
	return nil
}

// Picture returns the image of a picture fill.
func (f *ShapeFill) Picture() (*Image, error) {
	if f.Type != FillPicture {
		return nil, nil
	}
	blip := f.el.SelectElement("blip")
	if blip == nil {
		return nil, missingElement(f.shape.part().Name(), "a:blip")
	}
	return newImage(f.shape.part(), blip.SelectAttrValue("r:embed", ""))
}

// SetSolidFill replaces the shape's fill with a solid sRGB colour given as
// "RRGGBB" or "AARRGGBB".
func (a *AutoShape) SetSolidFill(hex string) {
	spPr := ensureChild(a.el, "spPr", "p:spPr", a.nvProps())
	for _, tag := range fillTags {
		if el := spPr.SelectElement(tag); el != nil {
			spPr.RemoveChild(el)
		}
	}
	var anchor *etree.Element
	for _, tag := range []string{"xfrm", "custGeom", "prstGeom"} {
		if el := spPr.SelectElement(tag); el != nil {
			anchor = el
		}
	}
	fill := etree.NewElement("a:solidFill")
	fill.CreateElement("a:srgbClr").CreateAttr("val", NewColor(hex).RGB())
	insertAfter(spPr, anchor, fill)
	a.part().MarkDirty()
}
