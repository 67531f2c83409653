package slidedotnet

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// TextBox is the text body (p:txBody or a:txBody) of an auto shape or a
// table cell.
type TextBox struct {
	el    *etree.Element
	owner shapeTreeOwner
	part  *Part
	// shape is nil for table cells.
	shape      *AutoShape
	paragraphs *Lazy[[]*Paragraph]
}

func newTextBox(el *etree.Element, owner shapeTreeOwner, shape *AutoShape) *TextBox {
	tb := &TextBox{el: el, owner: owner, part: owner.ownerPart(), shape: shape}
	tb.paragraphs = lazyOf(func() []*Paragraph {
		var out []*Paragraph
		for _, p := range el.SelectElements("p") {
			out = append(out, newParagraph(p, tb))
		}
		return out
	})
	return tb
}

// Paragraphs returns the paragraphs in document order.
func (tb *TextBox) Paragraphs() []*Paragraph { return tb.paragraphs.MustValue() }

// Text returns the plain text, paragraphs separated by "\n".
func (tb *TextBox) Text() string {
	var lines []string
	for _, p := range tb.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// SetText replaces the content with a single paragraph holding text. The
// first paragraph keeps its properties; the others are removed.
func (tb *TextBox) SetText(text string) {
	paras := tb.Paragraphs()
	var first *Paragraph
	if len(paras) == 0 {
		first = newParagraph(tb.el.CreateElement("a:p"), tb)
	} else {
		first = paras[0]
		for _, p := range paras[1:] {
			tb.el.RemoveChild(p.el)
		}
	}
	first.SetText(text)
	tb.paragraphs.Reset()
}

// SetLevelFontSize sets the list-style font size for a 1-based paragraph
// level in hundredths of a point.
func (tb *TextBox) SetLevelFontSize(level, size int) error {
	if level < 1 || level > 9 {
		return ErrOutOfRange
	}
	lst := tb.el.SelectElement("lstStyle")
	if lst == nil {
		lst = etree.NewElement("a:lstStyle")
		insertAfter(tb.el, tb.el.SelectElement("bodyPr"), lst)
	}
	tag := "lvl" + strconv.Itoa(level) + "pPr"
	lvl := lst.SelectElement(tag)
	if lvl == nil {
		lvl = etree.NewElement("a:" + tag)
		pos := len(lst.Child)
		for _, c := range lst.ChildElements() {
			if n, ok := levelOfStyleTag(c.Tag); ok && n > level {
				pos = c.Index()
				break
			}
		}
		lst.InsertChildAt(pos, lvl)
	}
	def := lvl.SelectElement("defRPr")
	if def == nil {
		def = lvl.CreateElement("a:defRPr")
	}
	def.CreateAttr("sz", strconv.Itoa(size))
	tb.part.MarkDirty()
	if tb.shape != nil {
		tb.shape.levels.Reset()
	}
	return nil
}

// levelTable returns the font data of the text body's own list style.
func (tb *TextBox) levelTable() map[int]FontData {
	if tb.shape != nil {
		return tb.shape.levels.MustValue()
	}
	return textBodyLevels(tb.el)
}

// --- Paragraph ---

// Paragraph is an a:p element.
type Paragraph struct {
	el       *etree.Element
	box      *TextBox
	portions *Lazy[[]*Portion]
}

func newParagraph(el *etree.Element, box *TextBox) *Paragraph {
	p := &Paragraph{el: el, box: box}
	p.portions = lazyOf(func() []*Portion {
		var out []*Portion
		for _, c := range el.ChildElements() {
			if c.Tag == "r" || c.Tag == "fld" {
				out = append(out, &Portion{el: c, para: p})
			}
		}
		return out
	})
	return p
}

// Level returns the 1-based outline level. a:pPr@lvl is 0-based and
// defaults to 0.
func (p *Paragraph) Level() int {
	if pPr := p.el.SelectElement("pPr"); pPr != nil {
		if lvl, err := strconv.Atoi(pPr.SelectAttrValue("lvl", "0")); err == nil {
			return lvl + 1
		}
	}
	return 1
}

// Bullet returns the bullet character, if the paragraph defines one.
func (p *Paragraph) Bullet() (string, bool) {
	bu := p.el.FindElement("./pPr/buChar")
	if bu == nil {
		return "", false
	}
	return bu.SelectAttrValue("char", ""), true
}

// Portions returns the text runs and fields of the paragraph.
func (p *Paragraph) Portions() []*Portion { return p.portions.MustValue() }

// Text returns the paragraph text; line breaks read as "\n".
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, c := range p.el.ChildElements() {
		switch c.Tag {
		case "r", "fld":
			if t := c.SelectElement("t"); t != nil {
				sb.WriteString(t.Text())
			}
		case "br":
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// SetText replaces the runs of the paragraph: one run per non-empty line,
// joined by a:br, plus a trailing a:br when text ends with a newline. New
// runs copy the formatting of the first existing run. Text without any
// characters leaves a single empty run so the formatting survives.
func (p *Paragraph) SetText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	template := p.el.SelectElement("r")
	if template == nil {
		template = etree.NewElement("a:r")
		if end := p.el.SelectElement("endParaRPr"); end != nil && len(end.Attr) > 0 {
			rPr := template.CreateElement("a:rPr")
			for _, a := range end.Attr {
				rPr.CreateAttr(a.FullKey(), a.Value)
			}
		}
		template.CreateElement("a:t")
	}
	template = template.Copy()
	if template.SelectElement("t") == nil {
		template.CreateElement("a:t")
	}

	for _, c := range p.el.ChildElements() {
		switch c.Tag {
		case "r", "br", "fld":
			p.el.RemoveChild(c)
		}
	}

	pos := len(p.el.Child)
	if end := p.el.SelectElement("endParaRPr"); end != nil {
		pos = end.Index()
	}
	insert := func(el *etree.Element) {
		p.el.InsertChildAt(pos, el)
		pos++
	}

	n := 0
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		if n > 0 {
			insert(etree.NewElement("a:br"))
		}
		run := template.Copy()
		run.SelectElement("t").SetText(line)
		insert(run)
		n++
	}
	switch {
	case n == 0:
		run := template.Copy()
		run.SelectElement("t").SetText("")
		insert(run)
	case strings.HasSuffix(text, "\n"):
		insert(etree.NewElement("a:br"))
	}

	p.box.part.MarkDirty()
	p.portions.Reset()
}

// --- Portion ---

// Portion is a run (a:r) or text field (a:fld) of uniform formatting.
type Portion struct {
	el   *etree.Element
	para *Paragraph
}

// Text returns the run text.
func (pt *Portion) Text() string {
	if t := pt.el.SelectElement("t"); t != nil {
		return t.Text()
	}
	return ""
}

// SetText replaces the run text.
func (pt *Portion) SetText(text string) {
	t := pt.el.SelectElement("t")
	if t == nil {
		t = pt.el.CreateElement("a:t")
	}
	t.SetText(text)
	pt.para.box.part.MarkDirty()
}

// IsField reports whether the portion is an a:fld, such as a slide number.
func (pt *Portion) IsField() bool { return pt.el.Tag == "fld" }

// Font returns the font of the portion.
func (pt *Portion) Font() *Font { return &Font{portion: pt} }
