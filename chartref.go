package slidedotnet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// cachedNumbers reads the points of a c:numCache or c:numLit by slot,
// rounded to one fractional digit. Slots without a value read as 0.
func cachedNumbers(cache *etree.Element) ([]float64, error) {
	slots := cacheSlots(cache)
	out := make([]float64, len(slots))
	for i, pt := range slots {
		text := strings.TrimSpace(pt.name)
		if text == "" {
			continue
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cached value %q: %w", text, err)
		}
		out[i] = roundOneDecimal(f)
	}
	return out, nil
}

// roundOneDecimal rounds half away from zero to one fractional digit. The
// decision is taken on the shortest decimal form of v, so 0.25 becomes 0.3
// even though its binary value is slightly below the midpoint.
func roundOneDecimal(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) <= 1 {
		return v
	}
	n, err := strconv.ParseInt(whole+frac[:1], 10, 64)
	if err != nil {
		return v
	}
	if frac[1] >= '5' {
		n++
	}
	r := float64(n) / 10
	if neg {
		r = -r
	}
	return r
}

// cellArea is one comma-separated area of a chart formula.
type cellArea struct {
	sheet string
	// from and to are cell names without '$'; to equals from for a single
	// cell.
	from, to string
}

// parseChartFormula splits a c:f formula such as "Sheet1!$A$2:$A$3" or
// "(Sheet1!$A$2,Sheet1!$A$4)" into areas. Dollar signs and quotes are
// stripped first. An area without a sheet takes the sheet of the area
// before it; the first area must name one.
func parseChartFormula(formula string) ([]cellArea, error) {
	f := strings.NewReplacer("$", "", "'", "").Replace(strings.TrimSpace(formula))
	f = strings.TrimSuffix(strings.TrimPrefix(f, "("), ")")
	if f == "" {
		return nil, newReferenceError(formula, "empty formula", nil)
	}

	var areas []cellArea
	sheet := ""
	for _, raw := range strings.Split(f, ",") {
		raw = strings.TrimSpace(raw)
		ref := raw
		if i := strings.LastIndex(raw, "!"); i >= 0 {
			sheet, ref = raw[:i], raw[i+1:]
		}
		if sheet == "" {
			return nil, newReferenceError(formula, "missing sheet name", nil)
		}
		if !isRangeOperand(ref) {
			return nil, newReferenceError(formula, fmt.Sprintf("malformed range %q", ref), nil)
		}
		from, to, isRange := strings.Cut(ref, ":")
		if !isRange {
			to = from
		}
		for _, cell := range []string{from, to} {
			if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
				return nil, newReferenceError(formula, fmt.Sprintf("malformed cell %q", cell), err)
			}
		}
		areas = append(areas, cellArea{sheet: sheet, from: from, to: to})
	}
	return areas, nil
}

// isRangeOperand reports whether ref tokenizes as exactly one range
// operand.
func isRangeOperand(ref string) bool {
	if ref == "" {
		return false
	}
	ps := efp.ExcelParser()
	tokens := ps.Parse("=" + ref)
	if len(tokens) != 1 {
		return false
	}
	tok := tokens[0]
	return tok.TType == efp.TokenTypeOperand && tok.TSubType == efp.TokenSubTypeRange && tok.TValue == ref
}

// cells expands the area row by row, left to right within a row.
func (a cellArea) cells() ([]string, error) {
	c1, r1, err := excelize.CellNameToCoordinates(a.from)
	if err != nil {
		return nil, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(a.to)
	if err != nil {
		return nil, err
	}
	c1, c2 = min(c1, c2), max(c1, c2)
	r1, r2 = min(r1, r2), max(r1, r2)
	out := make([]string, 0, (c2-c1+1)*(r2-r1+1))
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			name, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, err
			}
			out = append(out, name)
		}
	}
	return out, nil
}

// cellRef addresses one workbook cell resolved from a formula.
type cellRef struct {
	sheet string
	cell  string
}

// --- Workbook access ---

// workbookPart returns the embedded workbook part of the chart: the target
// of c:externalData, else the first package relationship.
func (c *Chart) workbookPart() (*Part, error) {
	doc, err := c.part.XML()
	if err != nil {
		return nil, err
	}
	if ext := doc.Root().SelectElement("externalData"); ext != nil {
		if rid := ext.SelectAttrValue("r:id", ""); rid != "" {
			return c.part.RelatedByID(rid)
		}
	}
	return c.part.Related(relTypePackage)
}

// HasWorkbook reports whether the chart carries an embedded workbook.
func (c *Chart) HasWorkbook() bool {
	_, err := c.workbookPart()
	return err == nil
}

// workbook opens the embedded workbook once per part and caches it on the
// presentation.
func (c *Chart) workbook() (*excelize.File, *Part, error) {
	part, err := c.workbookPart()
	if err != nil {
		return nil, nil, err
	}
	pres := c.owner.presentation()
	if wb, ok := pres.workbooks[part.Name()]; ok {
		return wb, part, nil
	}
	wb, err := excelize.OpenReader(bytes.NewReader(part.Bytes()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedded workbook %s: %w", part.Name(), err)
	}
	pres.workbooks[part.Name()] = wb
	pres.logger.Debug("embedded workbook opened", "part", part.Name(), "chart", c.part.Name())
	return wb, part, nil
}

// resolveCells maps a formula to workbook cells, checking that every cell
// lies on an existing sheet inside its used range.
func (c *Chart) resolveCells(formula string) (*excelize.File, []cellRef, error) {
	areas, err := parseChartFormula(formula)
	if err != nil {
		return nil, nil, err
	}
	wb, _, err := c.workbook()
	if err != nil {
		return nil, nil, newReferenceError(formula, "no embedded workbook", err)
	}
	var refs []cellRef
	for _, area := range areas {
		sheet, ok := findSheet(wb, area.sheet)
		if !ok {
			return nil, nil, newReferenceError(formula, fmt.Sprintf("sheet %q not found", area.sheet), nil)
		}
		maxCol, maxRow, err := usedRange(wb, sheet)
		if err != nil {
			return nil, nil, newReferenceError(formula, "unreadable sheet "+sheet, err)
		}
		cells, err := area.cells()
		if err != nil {
			return nil, nil, newReferenceError(formula, "malformed range", err)
		}
		for _, cell := range cells {
			col, row, _ := excelize.CellNameToCoordinates(cell)
			if col > maxCol || row > maxRow {
				return nil, nil, newReferenceError(formula, fmt.Sprintf("cell %s not found on sheet %s", cell, sheet), nil)
			}
			refs = append(refs, cellRef{sheet: sheet, cell: cell})
		}
	}
	return wb, refs, nil
}

// findSheet matches a sheet name with Unicode case folding.
func findSheet(wb *excelize.File, name string) (string, bool) {
	fold := cases.Fold()
	want := fold.String(name)
	for _, s := range wb.GetSheetList() {
		if fold.String(s) == want {
			return s, true
		}
	}
	return "", false
}

// usedRange returns the last column and row of a sheet: the larger of its
// declared dimension and the cells it actually stores.
func usedRange(wb *excelize.File, sheet string) (maxCol, maxRow int, err error) {
	dim, err := wb.GetSheetDimension(sheet)
	if err != nil {
		return 0, 0, err
	}
	if dim != "" {
		_, last, _ := strings.Cut(dim, ":")
		if last == "" {
			last = dim
		}
		if col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(last, "$", "")); err == nil {
			maxCol, maxRow = col, row
		}
	}
	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, 0, err
	}
	maxRow = max(maxRow, len(rows))
	for _, r := range rows {
		maxCol = max(maxCol, len(r))
	}
	return maxCol, maxRow, nil
}

// cellValues reads the raw text of every cell a formula covers.
func (c *Chart) cellValues(formula string) ([]string, error) {
	wb, refs, err := c.resolveCells(formula)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		v, err := wb.GetCellValue(r.sheet, r.cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, newReferenceError(formula, "unreadable cell "+r.cell, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- Resolution ---

func formulaOf(ref *etree.Element) string {
	if f := ref.SelectElement("f"); f != nil {
		return f.Text()
	}
	return ""
}

// resolveNumbers returns the values of a c:numRef, from its cache when one
// is present, else from the embedded workbook.
func (c *Chart) resolveNumbers(ref *etree.Element) ([]float64, error) {
	if cache := ref.SelectElement("numCache"); cache != nil {
		return cachedNumbers(cache)
	}
	formula := formulaOf(ref)
	texts, err := c.cellValues(formula)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			out = append(out, 0)
			continue
		}
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, newReferenceError(formula, fmt.Sprintf("cell text %q is not a number", t), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// resolveStrings returns the labels of a c:strRef or c:numRef, from its
// cache when one is present, else from the embedded workbook.
func (c *Chart) resolveStrings(ref *etree.Element) ([]string, error) {
	for _, tag := range []string{"strCache", "numCache"} {
		if cache := ref.SelectElement(tag); cache != nil {
			slots := cacheSlots(cache)
			out := make([]string, len(slots))
			for i, pt := range slots {
				out[i] = pt.name
			}
			return out, nil
		}
	}
	return c.cellValues(formulaOf(ref))
}

// resolveSingleString returns the first label of a reference, as used for
// series names.
func (c *Chart) resolveSingleString(ref *etree.Element) (string, error) {
	values, err := c.resolveStrings(ref)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", newReferenceError(formulaOf(ref), "reference is empty", nil)
	}
	return values[0], nil
}
