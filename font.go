package slidedotnet

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// defaultFontSize is used when nothing in the inheritance chain or the
// presentation defaults sets a size (18pt).
const defaultFontSize = 1800

// FontData is the font record of one list-style level.
type FontData struct {
	// Size is in hundredths of a point.
	Size int
}

// Font is the font of one portion. Reads resolve inherited values; writes
// go to the run's a:rPr.
type Font struct {
	portion *Portion
}

func (f *Font) rPr() *etree.Element {
	return f.portion.el.SelectElement("rPr")
}

// Size returns the effective font size in hundredths of a point. The run's
// own size wins; otherwise the size is inherited along the shape's list
// style, its layout and master placeholders and the master text styles,
// then the presentation default text style, then 18pt.
func (f *Font) Size() int {
	if rPr := f.rPr(); rPr != nil {
		if sz, err := strconv.Atoi(rPr.SelectAttrValue("sz", "")); err == nil {
			return sz
		}
	}
	level := f.portion.para.Level()
	box := f.portion.para.box
	if box.shape != nil {
		if sz, ok := resolveFontSize(box.shape, level); ok {
			return sz
		}
	} else if fd, ok := box.levelTable()[level]; ok {
		return fd.Size
	}
	if sz, ok := box.owner.presentation().defaultFontSize(level); ok {
		return sz
	}
	return defaultFontSize
}

// IsSizeExplicit reports whether the run sets its own size.
func (f *Font) IsSizeExplicit() bool {
	rPr := f.rPr()
	return rPr != nil && rPr.SelectAttrValue("sz", "") != ""
}

// SetSize sets the run's font size in hundredths of a point.
func (f *Font) SetSize(size int) {
	rPr := f.rPr()
	if rPr == nil {
		rPr = etree.NewElement("a:rPr")
		f.portion.el.InsertChildAt(0, rPr)
	}
	rPr.CreateAttr("sz", strconv.Itoa(size))
	f.portion.para.box.part.MarkDirty()
}

// resolveFontSize walks the inheritance chain of shape for a 1-based
// paragraph level: the shape's own list style, the matching layout
// placeholder, the matching master placeholder, then the master's text style
// for the placeholder role. It returns -1 and false when no source defines
// the level.
func resolveFontSize(shape *AutoShape, level int) (int, bool) {
	logger := shape.owner.presentation().logger
	var cur Shape = shape
	for cur != nil {
		if a, ok := cur.(*AutoShape); ok {
			if fd, ok := a.levels.MustValue()[level]; ok {
				return fd.Size, true
			}
		}
		next, err := inheritedShape(cur.base())
		if err != nil {
			logger.Warn("failed to resolve inherited placeholder", "shape", shape.Name(), "error", err)
			break
		}
		cur = next
	}

	ph := shape.Placeholder()
	if ph == nil {
		return -1, false
	}
	master, err := shape.owner.slideMaster()
	if err != nil {
		logger.Warn("failed to resolve slide master", "shape", shape.Name(), "error", err)
		return -1, false
	}
	style := master.textStyle(ph.textStyleName())
	if style == nil {
		return -1, false
	}
	if fd, ok := parseLevelStyles(style)[level]; ok {
		return fd.Size, true
	}
	return -1, false
}

// parseLevels builds the level table of an auto shape.
func (a *AutoShape) parseLevels() map[int]FontData {
	txBody := a.el.SelectElement("txBody")
	if txBody == nil {
		return map[int]FontData{}
	}
	return textBodyLevels(txBody)
}

// textBodyLevels reads a:lstStyle of a text body. When the list style
// defines no size, the a:endParaRPr@sz of the first paragraph counts for
// level 1.
func textBodyLevels(txBody *etree.Element) map[int]FontData {
	levels := map[int]FontData{}
	if lst := txBody.SelectElement("lstStyle"); lst != nil {
		levels = parseLevelStyles(lst)
	}
	if len(levels) > 0 {
		return levels
	}
	if p := txBody.SelectElement("p"); p != nil {
		if end := p.SelectElement("endParaRPr"); end != nil {
			if sz, err := strconv.Atoi(end.SelectAttrValue("sz", "")); err == nil {
				levels[1] = FontData{Size: sz}
			}
		}
	}
	return levels
}

// parseLevelStyles reads a:lvl1pPr..a:lvl9pPr/a:defRPr@sz children of a list
// style, master text style or default text style.
func parseLevelStyles(el *etree.Element) map[int]FontData {
	levels := map[int]FontData{}
	for _, c := range el.ChildElements() {
		level, ok := levelOfStyleTag(c.Tag)
		if !ok {
			continue
		}
		def := c.SelectElement("defRPr")
		if def == nil {
			continue
		}
		if sz, err := strconv.Atoi(def.SelectAttrValue("sz", "")); err == nil {
			levels[level] = FontData{Size: sz}
		}
	}
	return levels
}

// levelOfStyleTag parses "lvl3pPr" as 3.
func levelOfStyleTag(tag string) (int, bool) {
	if !strings.HasPrefix(tag, "lvl") || !strings.HasSuffix(tag, "pPr") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(tag, "lvl"), "pPr"))
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}
