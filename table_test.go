package slidedotnet

import (
	"errors"
	"testing"
)

func openTable(t *testing.T, rows, cols int) *Table {
	t.Helper()
	p := openDeck(t, deck{SlideShapes: tableFrame(5, rows, cols)})
	sh, ok := firstSlideShapes(t, p).ByID(5)
	if !ok {
		t.Fatal("table not found")
	}
	tbl, ok := sh.(*Table)
	if !ok {
		t.Fatalf("shape is %T, expected *Table", sh)
	}
	return tbl
}

func cellAt(t *testing.T, tbl *Table, row, col int) *Cell {
	t.Helper()
	c, err := tbl.Cell(row, col)
	if err != nil {
		t.Fatalf("Cell(%d,%d): %v", row, col, err)
	}
	return c
}

// mergedSet returns the anchors of every merged cell as "r,c".
func mergedSet(tbl *Table) map[[2]int]bool {
	out := make(map[[2]int]bool)
	for _, row := range tbl.Rows() {
		for _, c := range row.Cells() {
			if c.IsMerged() {
				out[[2]int{c.RowIndex(), c.ColumnIndex()}] = true
			}
		}
	}
	return out
}

func TestTableGeometry(t *testing.T) {
	tbl := openTable(t, 3, 4)
	if tbl.RowCount() != 3 || tbl.ColumnCount() != 4 {
		t.Fatalf("size: expected 3x4, got %dx%d", tbl.RowCount(), tbl.ColumnCount())
	}
	if h := tbl.Rows()[0].Height(); h != 370840 {
		t.Errorf("row height: expected 370840, got %d", h)
	}
	c := cellAt(t, tbl, 2, 3)
	if c.RowIndex() != 2 || c.ColumnIndex() != 3 {
		t.Errorf("anchor: expected (2,3), got (%d,%d)", c.RowIndex(), c.ColumnIndex())
	}
	if got := c.TextBox().Text(); got != "2,3" {
		t.Errorf("cell text: expected %q, got %q", "2,3", got)
	}
	for _, rc := range [][2]int{{-1, 0}, {3, 0}, {0, 4}} {
		if _, err := tbl.Cell(rc[0], rc[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Cell(%d,%d): expected ErrOutOfRange, got %v", rc[0], rc[1], err)
		}
	}
}

func TestMergeCellsTwoByTwo(t *testing.T) {
	tbl := openTable(t, 4, 4)
	if err := tbl.MergeCells(cellAt(t, tbl, 1, 1), cellAt(t, tbl, 2, 2)); err != nil {
		t.Fatalf("MergeCells: %v", err)
	}
	got := mergedSet(tbl)
	want := map[[2]int]bool{{1, 1}: true, {1, 2}: true, {2, 1}: true, {2, 2}: true}
	if len(got) != len(want) {
		t.Fatalf("merged cells: expected %v, got %v", want, got)
	}
	for k := range want {
		if !got[k] {
			t.Errorf("cell %v not merged", k)
		}
	}
	anchor := cellAt(t, tbl, 1, 1)
	if anchor.GridSpan() != 2 || anchor.RowSpan() != 2 {
		t.Errorf("anchor spans: expected 2x2, got %dx%d", anchor.GridSpan(), anchor.RowSpan())
	}
	if c := cellAt(t, tbl, 2, 2); c.RowIndex() != 2 || c.ColumnIndex() != 2 {
		t.Error("merged cell moved its anchor")
	}
}

func TestMergeCellsSymmetric(t *testing.T) {
	a := openTable(t, 3, 3)
	b := openTable(t, 3, 3)
	if err := a.MergeCells(cellAt(t, a, 0, 2), cellAt(t, a, 1, 0)); err != nil {
		t.Fatalf("MergeCells: %v", err)
	}
	if err := b.MergeCells(cellAt(t, b, 1, 0), cellAt(t, b, 0, 2)); err != nil {
		t.Fatalf("MergeCells: %v", err)
	}
	ma, mb := mergedSet(a), mergedSet(b)
	if len(ma) != 6 || len(ma) != len(mb) {
		t.Fatalf("merged: expected 6 and 6, got %d and %d", len(ma), len(mb))
	}
	for k := range ma {
		if !mb[k] {
			t.Errorf("cell %v merged in one order only", k)
		}
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			ea, eb := cellAt(t, a, r, c).el, cellAt(t, b, r, c).el
			for _, key := range []string{"gridSpan", "rowSpan", "hMerge", "vMerge"} {
				if ea.SelectAttrValue(key, "") != eb.SelectAttrValue(key, "") {
					t.Errorf("cell (%d,%d) %s differs", r, c, key)
				}
			}
		}
	}
}

func TestMergeCellsIdempotent(t *testing.T) {
	tbl := openTable(t, 2, 2)
	c := cellAt(t, tbl, 0, 0)
	if err := tbl.MergeCells(c, c); err != nil {
		t.Fatalf("self merge: %v", err)
	}
	if n := len(mergedSet(tbl)); n != 0 {
		t.Fatalf("self merge marked %d cells", n)
	}

	for i := 0; i < 2; i++ {
		if err := tbl.MergeCells(cellAt(t, tbl, 0, 0), cellAt(t, tbl, 0, 1)); err != nil {
			t.Fatalf("MergeCells: %v", err)
		}
	}
	got := mergedSet(tbl)
	if len(got) != 2 || !got[[2]int{0, 0}] || !got[[2]int{0, 1}] {
		t.Errorf("merged: unexpected %v", got)
	}
	if c.GridSpan() != 2 || c.RowSpan() != 1 {
		t.Errorf("spans: expected 2x1, got %dx%d", c.GridSpan(), c.RowSpan())
	}
}

// A merge that cuts through an earlier one absorbs it, and no covered cell
// keeps a span of its own.
func TestMergeCellsOverlappingEarlierMerge(t *testing.T) {
	tbl := openTable(t, 2, 3)
	if err := tbl.MergeCells(cellAt(t, tbl, 0, 1), cellAt(t, tbl, 0, 2)); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if err := tbl.MergeCells(cellAt(t, tbl, 0, 0), cellAt(t, tbl, 1, 1)); err != nil {
		t.Fatalf("second merge: %v", err)
	}

	anchor := cellAt(t, tbl, 0, 0)
	if anchor.GridSpan() != 3 || anchor.RowSpan() != 2 {
		t.Fatalf("anchor spans: expected 3x2, got %dx%d", anchor.GridSpan(), anchor.RowSpan())
	}
	want := map[[2]int][2]string{
		{0, 1}: {"1", ""}, {0, 2}: {"1", ""},
		{1, 0}: {"", "1"}, {1, 1}: {"1", "1"}, {1, 2}: {"1", "1"},
	}
	for rc, flags := range want {
		el := cellAt(t, tbl, rc[0], rc[1]).el
		if el.SelectAttr("gridSpan") != nil || el.SelectAttr("rowSpan") != nil {
			t.Errorf("covered cell %v keeps a span", rc)
		}
		if h, v := el.SelectAttrValue("hMerge", ""), el.SelectAttrValue("vMerge", ""); h != flags[0] || v != flags[1] {
			t.Errorf("cell %v: expected hMerge=%q vMerge=%q, got %q %q", rc, flags[0], flags[1], h, v)
		}
	}
}

func TestMergeCellsForeignCell(t *testing.T) {
	a := openTable(t, 2, 2)
	b := openTable(t, 2, 2)
	if err := a.MergeCells(cellAt(t, a, 0, 0), cellAt(t, b, 1, 1)); err == nil {
		t.Error("expected error for a cell of another table")
	}
}

func TestMergeSurvivesRoundTrip(t *testing.T) {
	p := openDeck(t, deck{SlideShapes: tableFrame(5, 2, 2)})
	sh, _ := firstSlideShapes(t, p).ByID(5)
	tbl := sh.(*Table)
	if err := tbl.MergeCells(cellAt(t, tbl, 0, 0), cellAt(t, tbl, 1, 0)); err != nil {
		t.Fatalf("MergeCells: %v", err)
	}
	p2 := roundTrip(t, p)
	sh2, _ := firstSlideShapes(t, p2).ByID(5)
	got := mergedSet(sh2.(*Table))
	if len(got) != 2 || !got[[2]int{1, 0}] {
		t.Errorf("merged after round trip: %v", got)
	}
}
