package slidedotnet

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/beevik/etree"
)

// Category is a label of a chart's category axis. On multi-level axes each
// category points to the category one level up.
type Category struct {
	chart  *Chart
	name   string
	parent *Category
	// index is the c:pt@idx of the label, the first leaf it spans.
	index int
	// pt is the cached c:pt, nil when the label was read from the workbook
	// or the cache leaves the slot out. cache holds the c:pt list of a flat
	// axis.
	pt    *etree.Element
	cache *etree.Element
	// ref is the c:strRef or c:numRef of a flat axis; pos is the cell of
	// the label within it.
	ref *etree.Element
	pos int
}

// Name returns the label.
func (cat *Category) Name() string { return cat.name }

// Parent returns the enclosing category, or nil on the top level and on
// flat axes.
func (cat *Category) Parent() *Category { return cat.parent }

// Index returns the leaf position the category starts at.
func (cat *Category) Index() int { return cat.index }

// SetName renames the category. The cached label is updated and, for flat
// axes backed by an embedded workbook, so is the referenced cell.
func (cat *Category) SetName(name string) error {
	c := cat.chart
	if cat.ref != nil && c.HasWorkbook() {
		if formula := formulaOf(cat.ref); formula != "" {
			if err := c.writeCell(formula, cat.pos, name); err != nil {
				return err
			}
		}
	}
	if cat.pt == nil && cat.cache != nil {
		cat.pt = insertCachePoint(cat.cache, cat.index)
	}
	if cat.pt != nil {
		v := cat.pt.SelectElement("v")
		if v == nil {
			v = cat.pt.CreateElement("c:v")
		}
		v.SetText(name)
		c.markDirty()
	}
	cat.name = name
	c.categories.Reset()
	return nil
}

// writeCell stores value in the pos-th cell of formula and writes the
// workbook back into its part.
func (c *Chart) writeCell(formula string, pos int, value string) error {
	wb, refs, err := c.resolveCells(formula)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(refs) {
		return newReferenceError(formula, fmt.Sprintf("position %d outside the range", pos), ErrOutOfRange)
	}
	r := refs[pos]
	if err := wb.SetCellValue(r.sheet, r.cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s!%s: %w", r.sheet, r.cell, err)
	}
	_, part, err := c.workbook()
	if err != nil {
		return err
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode embedded workbook %s: %w", part.Name(), err)
	}
	part.SetBytes(buf.Bytes())
	return nil
}

// categoryPoint is one cached label: c:pt@idx and its c:v.
type categoryPoint struct {
	index int
	name  string
	el    *etree.Element
}

// cachePoints reads the c:pt children of a cache or c:lvl in index order. A
// point without idx takes its position.
func cachePoints(el *etree.Element) []categoryPoint {
	var out []categoryPoint
	for i, pt := range el.SelectElements("pt") {
		idx, err := strconv.Atoi(pt.SelectAttrValue("idx", ""))
		if err != nil {
			idx = i
		}
		name := ""
		if v := pt.SelectElement("v"); v != nil {
			name = v.Text()
		}
		out = append(out, categoryPoint{index: idx, name: name, el: pt})
	}
	slices.SortStableFunc(out, func(a, b categoryPoint) int { return a.index - b.index })
	return out
}

// cacheSlots reads a flat cache as one entry per slot: c:ptCount slots, or
// up to the highest idx when that is larger. Slots without a c:pt have an
// empty name and a nil element.
func cacheSlots(el *etree.Element) []categoryPoint {
	points := cachePoints(el)
	n := 0
	if count := el.SelectElement("ptCount"); count != nil {
		n, _ = strconv.Atoi(count.SelectAttrValue("val", ""))
	}
	for _, pt := range points {
		n = max(n, pt.index+1)
	}
	out := make([]categoryPoint, max(n, 0))
	for i := range out {
		out[i].index = i
	}
	for _, pt := range points {
		if pt.index >= 0 {
			out[pt.index] = pt
		}
	}
	return out
}

// insertCachePoint adds an empty c:pt for idx to cache, keeping the points
// in index order.
func insertCachePoint(cache *etree.Element, idx int) *etree.Element {
	pt := etree.NewElement("c:pt")
	pt.CreateAttr("idx", strconv.Itoa(idx))
	pt.CreateElement("c:v")
	at := -1
	for _, existing := range cache.SelectElements("pt") {
		n, err := strconv.Atoi(existing.SelectAttrValue("idx", ""))
		if err == nil && n > idx {
			at = existing.Index()
			break
		}
		at = existing.Index() + 1
	}
	if at < 0 {
		if count := cache.SelectElement("ptCount"); count != nil {
			at = count.Index() + 1
		} else {
			at = 0
		}
	}
	cache.InsertChildAt(at, pt)
	return pt
}

// reconstructCategories rebuilds a multi-level axis. levels are in storage
// order, the leaf level first. Levels are linked top-down: an entry's parent
// is the entry of the level above with the greatest index not after its
// own. The leaves are returned in index order.
func reconstructCategories(levels [][]categoryPoint) []*Category {
	var above []*Category
	for i := len(levels) - 1; i >= 0; i-- {
		current := make([]*Category, 0, len(levels[i]))
		for _, pt := range levels[i] {
			cat := &Category{name: pt.name, index: pt.index, pt: pt.el}
			for j := len(above) - 1; j >= 0; j-- {
				if above[j].index <= pt.index {
					cat.parent = above[j]
					break
				}
			}
			current = append(current, cat)
		}
		slices.SortStableFunc(current, func(a, b *Category) int { return a.index - b.index })
		above = current
	}
	if above == nil {
		return []*Category{}
	}
	return above
}

func (c *Chart) loadCategories() ([]*Category, error) {
	if !c.HasCategories() {
		return nil, nil
	}
	series := c.Series()
	if len(series) == 0 {
		return []*Category{}, nil
	}
	cat := series[0].el.SelectElement("cat")
	if cat == nil {
		return []*Category{}, nil
	}

	var out []*Category
	switch {
	case cat.SelectElement("multiLvlStrRef") != nil:
		ref := cat.SelectElement("multiLvlStrRef")
		cache := ref.SelectElement("multiLvlStrCache")
		if cache == nil {
			return nil, newReferenceError(formulaOf(ref), "multi-level categories have no cache", nil)
		}
		var levels [][]categoryPoint
		for _, lvl := range cache.SelectElements("lvl") {
			levels = append(levels, cachePoints(lvl))
		}
		out = reconstructCategories(levels)
	case cat.SelectElement("strRef") != nil || cat.SelectElement("numRef") != nil:
		ref := cat.SelectElement("strRef")
		if ref == nil {
			ref = cat.SelectElement("numRef")
		}
		var err error
		if out, err = c.flatCategories(ref); err != nil {
			return nil, err
		}
	default:
		for _, tag := range []string{"strLit", "numLit"} {
			if lit := cat.SelectElement(tag); lit != nil {
				for _, pt := range cacheSlots(lit) {
					out = append(out, &Category{name: pt.name, index: pt.index, pt: pt.el, cache: lit})
				}
				break
			}
		}
	}

	for _, category := range out {
		for up := category; up != nil; up = up.parent {
			up.chart = c
		}
	}
	if out == nil {
		out = []*Category{}
	}
	return out, nil
}

// flatCategories reads a single-level axis from the cache of ref, or from
// the embedded workbook when there is none.
func (c *Chart) flatCategories(ref *etree.Element) ([]*Category, error) {
	var out []*Category
	for _, tag := range []string{"strCache", "numCache"} {
		if cache := ref.SelectElement(tag); cache != nil {
			for _, pt := range cacheSlots(cache) {
				out = append(out, &Category{name: pt.name, index: pt.index, pt: pt.el, cache: cache, ref: ref, pos: pt.index})
			}
			return out, nil
		}
	}
	names, err := c.cellValues(formulaOf(ref))
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		out = append(out, &Category{name: name, index: i, ref: ref, pos: i})
	}
	return out, nil
}
