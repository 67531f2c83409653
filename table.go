package slidedotnet

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Table is a p:graphicFrame holding an a:tbl.
type Table struct {
	baseShape
	tbl  *etree.Element
	rows *Lazy[[]*Row]
}

func newTable(el *etree.Element, owner shapeTreeOwner, parent *Group) (*Table, error) {
	tbl := el.FindElement("./graphic/graphicData/tbl")
	if tbl == nil {
		return nil, missingElement(owner.ownerPart().Name(), "a:tbl")
	}
	t := &Table{baseShape: newBaseShape(el, owner, parent), tbl: tbl}
	t.rows = lazyOf(t.loadRows)
	return t, nil
}

func (t *Table) loadRows() []*Row {
	var rows []*Row
	for i, tr := range t.tbl.SelectElements("tr") {
		row := &Row{table: t, el: tr, index: i}
		for j, tc := range tr.SelectElements("tc") {
			row.cells = append(row.cells, &Cell{table: t, el: tc, row: i, col: j})
		}
		rows = append(rows, row)
	}
	return rows
}

// Rows returns the rows in document order.
func (t *Table) Rows() []*Row { return t.rows.MustValue() }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Rows()) }

// ColumnCount returns the number of grid columns (a:gridCol).
func (t *Table) ColumnCount() int {
	grid := t.tbl.SelectElement("tblGrid")
	if grid == nil {
		return 0
	}
	return len(grid.SelectElements("gridCol"))
}

// ColumnWidths returns the width of every grid column in EMU.
func (t *Table) ColumnWidths() []int64 {
	var out []int64
	if grid := t.tbl.SelectElement("tblGrid"); grid != nil {
		for _, gc := range grid.SelectElements("gridCol") {
			w, _ := strconv.ParseInt(gc.SelectAttrValue("w", "0"), 10, 64)
			out = append(out, w)
		}
	}
	return out
}

// Cell returns the cell anchored at the zero-based row and column.
func (t *Table) Cell(row, col int) (*Cell, error) {
	rows := t.Rows()
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	cells := rows[row].cells
	if col < 0 || col >= len(cells) {
		return nil, fmt.Errorf("column %d: %w", col, ErrOutOfRange)
	}
	return cells[col], nil
}

// MergeCells merges the rectangle spanned by the anchors of a and b. The
// rectangle grows to cover every earlier merged region it overlaps, and
// the merge attributes inside it are rewritten: the top-left cell receives
// gridSpan and rowSpan, the other cells hMerge and vMerge. Merging a cell
// with itself does nothing.
func (t *Table) MergeCells(a, b *Cell) error {
	if a == nil || b == nil || a.table != t || b.table != t {
		return fmt.Errorf("merge cells: cell does not belong to the table: %w", ErrOutOfRange)
	}
	if a.row == b.row && a.col == b.col {
		return nil
	}
	box := cellBox{min(a.row, b.row), min(a.col, b.col), max(a.row, b.row), max(a.col, b.col)}
	box = t.coverMerged(box)

	for r := box.top; r <= box.bottom; r++ {
		for c := box.left; c <= box.right; c++ {
			cell, err := t.Cell(r, c)
			if err != nil {
				return err
			}
			el := cell.el
			for _, key := range []string{"gridSpan", "rowSpan", "hMerge", "vMerge"} {
				el.RemoveAttr(key)
			}
			switch {
			case r == box.top && c == box.left:
				setSpan(el, "gridSpan", box.right-box.left+1)
				setSpan(el, "rowSpan", box.bottom-box.top+1)
			case r == box.top:
				el.CreateAttr("hMerge", "1")
			case c == box.left:
				el.CreateAttr("vMerge", "1")
			default:
				el.CreateAttr("hMerge", "1")
				el.CreateAttr("vMerge", "1")
			}
		}
	}
	t.part().MarkDirty()
	return nil
}

// cellBox is an inclusive rectangle of cell anchors.
type cellBox struct {
	top, left, bottom, right int
}

func (b cellBox) overlaps(o cellBox) bool {
	return b.top <= o.bottom && o.top <= b.bottom && b.left <= o.right && o.left <= b.right
}

func (b cellBox) union(o cellBox) cellBox {
	return cellBox{min(b.top, o.top), min(b.left, o.left), max(b.bottom, o.bottom), max(b.right, o.right)}
}

// mergedRegions returns the rectangles of the table's merged cells, taken
// from the spans of their top-left cells and clipped to the grid.
func (t *Table) mergedRegions() []cellBox {
	var out []cellBox
	rows := t.Rows()
	for _, row := range rows {
		for _, c := range row.cells {
			gs, rs := c.GridSpan(), c.RowSpan()
			if gs == 1 && rs == 1 {
				continue
			}
			out = append(out, cellBox{
				top:    c.row,
				left:   c.col,
				bottom: min(c.row+rs, len(rows)) - 1,
				right:  min(c.col+gs, len(row.cells)) - 1,
			})
		}
	}
	return out
}

// coverMerged widens box until no merged region lies partly inside it.
func (t *Table) coverMerged(box cellBox) cellBox {
	regions := t.mergedRegions()
	for grown := true; grown; {
		grown = false
		for _, r := range regions {
			if box.overlaps(r) && box.union(r) != box {
				box = box.union(r)
				grown = true
			}
		}
	}
	return box
}

// setSpan writes a span attribute, dropping it when the span is 1.
func setSpan(el *etree.Element, key string, span int) {
	if span > 1 {
		el.CreateAttr(key, strconv.Itoa(span))
		return
	}
	el.RemoveAttr(key)
}

// --- Row ---

// Row is an a:tr element.
type Row struct {
	table *Table
	el    *etree.Element
	index int
	cells []*Cell
}

// Index returns the zero-based row number.
func (r *Row) Index() int { return r.index }

// Height returns the row height in EMU.
func (r *Row) Height() int64 {
	h, _ := strconv.ParseInt(r.el.SelectAttrValue("h", "0"), 10, 64)
	return h
}

// Cells returns the cells of the row, one per grid column.
func (r *Row) Cells() []*Cell { return r.cells }

// --- Cell ---

// Cell is an a:tc element. Its anchor (row and column) is fixed when the
// table is read and does not move when the cell is merged.
type Cell struct {
	table *Table
	el    *etree.Element
	row   int
	col   int
}

// RowIndex returns the zero-based row of the cell's anchor.
func (c *Cell) RowIndex() int { return c.row }

// ColumnIndex returns the zero-based column of the cell's anchor.
func (c *Cell) ColumnIndex() int { return c.col }

// GridSpan returns the number of columns the cell spans.
func (c *Cell) GridSpan() int { return spanOf(c.el, "gridSpan") }

// RowSpan returns the number of rows the cell spans.
func (c *Cell) RowSpan() int { return spanOf(c.el, "rowSpan") }

func spanOf(el *etree.Element, key string) int {
	if v, err := strconv.Atoi(el.SelectAttrValue(key, "1")); err == nil && v > 1 {
		return v
	}
	return 1
}

// IsMerged reports whether the cell takes part in a merged region, either
// as its top-left cell or as a covered cell.
func (c *Cell) IsMerged() bool {
	return c.GridSpan() > 1 || c.RowSpan() > 1 ||
		parseXMLBool(c.el.SelectAttrValue("hMerge", "0")) ||
		parseXMLBool(c.el.SelectAttrValue("vMerge", "0"))
}

// TextBox returns the text of the cell, or nil when it has no a:txBody.
func (c *Cell) TextBox() *TextBox {
	txBody := c.el.SelectElement("txBody")
	if txBody == nil {
		return nil
	}
	return newTextBox(txBody, c.table.owner, nil)
}
