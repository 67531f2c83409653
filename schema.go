package slidedotnet

import "encoding/xml"

// XML namespace constants
const (
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types
const (
	relTypeOfficeDoc   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCoreProps   = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeChart       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	relTypePackage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
	relTypeOLEObject   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/oleObject"
	relTypeCustomXML   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/customXml"
)

// Content types
const (
	ctRels        = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML         = "application/xml"
	ctSlide       = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideLayout = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlideMaster = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctChart       = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
)

// a:graphicData@uri values that select the graphic frame variant.
const (
	uriChart = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	uriTable = "http://schemas.openxmlformats.org/drawingml/2006/table"
	uriOLE   = "http://schemas.openxmlformats.org/presentationml/2006/ole"
)

// customDataPrefix marks custom XML parts and shape elements that carry
// user data attached through SetCustomData.
const customDataPrefix = "ctd"

// --- Content Types ---

type xmlContentTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// --- Relationships ---

type xmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type xmlRelationships struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr"`
	Relationships []xmlRelationship `xml:"Relationship"`
}
