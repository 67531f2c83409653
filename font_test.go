package slidedotnet

import "testing"

// titleDeck has a title placeholder on every level. Each level contributes
// the list style given for it.
func titleDeck(slideLst, layoutLst, masterLst, txStyles string) deck {
	return deck{
		SlideShapes:  sp(2, "Title 1", ph("title"), "", txBody(slideLst, para("Hello"))),
		LayoutShapes: sp(2, "Title 1", ph("title"), xfrm(10, 20, 300, 400), txBody(layoutLst, "<a:p/>")),
		MasterShapes: sp(2, "Title Placeholder 1", ph("title"), xfrm(1, 2, 3, 4), txBody(masterLst, "<a:p/>")),
		TxStyles:     txStyles,
	}
}

func firstFont(t *testing.T, p *Presentation, name string) *Font {
	t.Helper()
	sh, ok := firstSlideShapes(t, p).ByName(name)
	if !ok {
		t.Fatalf("shape %q not found", name)
	}
	a, ok := sh.(*AutoShape)
	if !ok {
		t.Fatalf("shape %q is %T, expected *AutoShape", name, sh)
	}
	portions := a.TextBox().Paragraphs()[0].Portions()
	if len(portions) == 0 {
		t.Fatalf("shape %q has no portions", name)
	}
	return portions[0].Font()
}

// Only the master text style defines level 1; slide and layout inherit it.
func TestFontSizeFromMasterOnly(t *testing.T) {
	p := openDeck(t, titleDeck("", "", "", `<p:titleStyle>`+lvlSize(1, 2200)+`</p:titleStyle>`))
	if got := firstFont(t, p, "Title 1").Size(); got != 2200 {
		t.Errorf("font size: expected 2200, got %d", got)
	}
	if size, ok := resolveFontSize(textShape(t, p, "Title 1"), 1); !ok || size != 2200 {
		t.Errorf("resolveFontSize: expected 2200 found, got %d %v", size, ok)
	}
}

func TestFontSizeInheritancePriority(t *testing.T) {
	master := lvlSize(1, 4400)
	styles := `<p:titleStyle>` + lvlSize(1, 1000) + `</p:titleStyle>`

	tests := []struct {
		name      string
		slideLst  string
		layoutLst string
		want      int
	}{
		{"slide wins", lvlSize(1, 2000), lvlSize(1, 3200), 2000},
		{"layout over master", "", lvlSize(1, 3200), 3200},
		{"master shape over text styles", "", "", 4400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openDeck(t, titleDeck(tt.slideLst, tt.layoutLst, master, styles))
			if got := firstFont(t, p, "Title 1").Size(); got != tt.want {
				t.Errorf("font size: expected %d, got %d", tt.want, got)
			}
		})
	}
}

// Changing a lower-priority source does not change the result while a
// higher-priority source exists.
func TestFontSizeLowerPriorityChangeIgnored(t *testing.T) {
	p := openDeck(t, titleDeck("", lvlSize(1, 3200), lvlSize(1, 4400), ""))
	font := firstFont(t, p, "Title 1")
	if got := font.Size(); got != 3200 {
		t.Fatalf("font size: expected 3200, got %d", got)
	}

	masters, err := p.SlideMasters()
	if err != nil {
		t.Fatalf("SlideMasters: %v", err)
	}
	shapes, _ := masters[0].Shapes()
	masterTitle := shapes.At(0).(*AutoShape)
	if err := masterTitle.TextBox().SetLevelFontSize(1, 5400); err != nil {
		t.Fatalf("SetLevelFontSize: %v", err)
	}
	if got := font.Size(); got != 3200 {
		t.Errorf("font size after master change: expected 3200, got %d", got)
	}
}

func TestFontSizeRunOverride(t *testing.T) {
	d := titleDeck("", lvlSize(1, 3200), "", "")
	d.SlideShapes = sp(2, "Title 1", ph("title"), "",
		txBody("", `<a:p><a:r><a:rPr lang="en-US" sz="1100"/><a:t>Small</a:t></a:r></a:p>`))
	p := openDeck(t, d)
	font := firstFont(t, p, "Title 1")
	if !font.IsSizeExplicit() {
		t.Error("IsSizeExplicit: expected true")
	}
	if got := font.Size(); got != 1100 {
		t.Errorf("font size: expected 1100, got %d", got)
	}
	font.SetSize(2400)
	if got := font.Size(); got != 2400 {
		t.Errorf("font size after SetSize: expected 2400, got %d", got)
	}
}

func TestFontSizeParagraphLevel(t *testing.T) {
	d := deck{
		SlideShapes: sp(2, "Content 2", phIdx("", 1), "",
			txBody("", `<a:p><a:pPr lvl="1"/><a:r><a:t>Second level</a:t></a:r></a:p>`)),
		LayoutShapes: sp(2, "Content Placeholder 2", phIdx("", 1), "", txBody("", "<a:p/>")),
		MasterShapes: sp(3, "Text Placeholder 2", ph("body"), "", txBody("", "<a:p/>")),
		TxStyles:     `<p:bodyStyle>` + lvlSize(1, 2800) + lvlSize(2, 2400) + `</p:bodyStyle>`,
	}
	p := openDeck(t, d)
	sh, _ := firstSlideShapes(t, p).ByName("Content 2")
	paragraph := sh.(*AutoShape).TextBox().Paragraphs()[0]
	if paragraph.Level() != 2 {
		t.Fatalf("level: expected 2, got %d", paragraph.Level())
	}
	if got := paragraph.Portions()[0].Font().Size(); got != 2400 {
		t.Errorf("font size: expected 2400, got %d", got)
	}
}

func TestFontSizeDefaults(t *testing.T) {
	t.Run("presentation default text style", func(t *testing.T) {
		d := deck{
			SlideShapes:      sp(2, "TextBox 1", "", "", txBody("", para("plain"))),
			DefaultTextStyle: lvlSize(1, 1400),
			// A body style must not apply to ordinary text boxes.
			TxStyles: `<p:otherStyle>` + lvlSize(1, 900) + `</p:otherStyle>`,
		}
		p := openDeck(t, d)
		if got := firstFont(t, p, "TextBox 1").Size(); got != 1400 {
			t.Errorf("font size: expected 1400, got %d", got)
		}
	})
	t.Run("hard default", func(t *testing.T) {
		p := openDeck(t, deck{SlideShapes: sp(2, "TextBox 1", "", "", txBody("", para("plain")))})
		if got := firstFont(t, p, "TextBox 1").Size(); got != defaultFontSize {
			t.Errorf("font size: expected %d, got %d", defaultFontSize, got)
		}
	})
	t.Run("end paragraph run counts for level 1", func(t *testing.T) {
		body := txBody("", `<a:p><a:r><a:t>x</a:t></a:r><a:endParaRPr lang="en-US" sz="2000"/></a:p>`)
		p := openDeck(t, deck{SlideShapes: sp(2, "TextBox 1", "", "", body)})
		if got := firstFont(t, p, "TextBox 1").Size(); got != 2000 {
			t.Errorf("font size: expected 2000, got %d", got)
		}
	})
}

func TestResolveFontSizeNotFound(t *testing.T) {
	p := openDeck(t, deck{SlideShapes: sp(2, "TextBox 1", "", "", txBody("", para("plain")))})
	sh, _ := firstSlideShapes(t, p).ByName("TextBox 1")
	size, ok := resolveFontSize(sh.(*AutoShape), 1)
	if ok || size != -1 {
		t.Errorf("resolveFontSize: expected -1,false, got %d,%v", size, ok)
	}
}

func TestLevelOfStyleTag(t *testing.T) {
	tests := []struct {
		tag  string
		want int
		ok   bool
	}{
		{"lvl1pPr", 1, true},
		{"lvl9pPr", 9, true},
		{"lvl0pPr", 0, false},
		{"lvl10pPr", 0, false},
		{"defPPr", 0, false},
	}
	for _, tt := range tests {
		got, ok := levelOfStyleTag(tt.tag)
		if got != tt.want || ok != tt.ok {
			t.Errorf("levelOfStyleTag(%q) = %d,%v, expected %d,%v", tt.tag, got, ok, tt.want, tt.ok)
		}
	}
}
