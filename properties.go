package slidedotnet

import (
	"errors"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// DocumentProperties holds the core properties of the package
// (docProps/core.xml).
type DocumentProperties struct {
	part *Part

	Creator        string
	LastModifiedBy string
	Created        time.Time
	Modified       time.Time
	Title          string
	Description    string
	Subject        string
	Keywords       string
	Category       string
	Revision       string
}

// Properties returns the core properties. A package without a core
// properties part yields an empty value.
func (p *Presentation) Properties() (*DocumentProperties, error) {
	return p.properties.Value()
}

func (p *Presentation) loadProperties() (*DocumentProperties, error) {
	part, err := p.pkg.Related(relTypeCoreProps)
	if errors.Is(err, ErrPartNotFound) {
		return &DocumentProperties{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc, err := part.XML()
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	text := func(tag string) string {
		if el := root.SelectElement(tag); el != nil {
			return strings.TrimSpace(el.Text())
		}
		return ""
	}
	props := &DocumentProperties{
		part:           part,
		Creator:        text("creator"),
		LastModifiedBy: text("lastModifiedBy"),
		Title:          text("title"),
		Description:    text("description"),
		Subject:        text("subject"),
		Keywords:       text("keywords"),
		Category:       text("category"),
		Revision:       text("revision"),
	}
	props.Created = parseW3CDTF(text("created"))
	props.Modified = parseW3CDTF(text("modified"))
	return props, nil
}

// parseW3CDTF reads a dcterms date; unparsable values give the zero time.
func parseW3CDTF(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SetTitle updates dc:title in the core properties part. It does nothing
// when the package has no such part.
func (dp *DocumentProperties) SetTitle(title string) {
	dp.Title = title
	if dp.part == nil {
		return
	}
	doc, err := dp.part.XML()
	if err != nil {
		return
	}
	el := doc.Root().SelectElement("title")
	if el == nil {
		el = etree.NewElement("dc:title")
		doc.Root().AddChild(el)
	}
	el.SetText(title)
	dp.part.MarkDirty()
}
