package slidedotnet

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const contentTypesPart = "[Content_Types].xml"

// Relationship is one entry of a part's relationship set.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type relationshipSet struct {
	source string
	rels   []Relationship
}

// Package is an OPC package held in memory: named parts and the
// relationships between them.
type Package struct {
	logger  *slog.Logger
	parts   map[string]*Part
	order   []string
	types   xmlContentTypes
	relSets map[string]*relationshipSet
}

// Part is one named item of a Package. Its identity (the name) never
// changes; its content does.
type Part struct {
	pkg   *Package
	name  string
	data  []byte
	doc   *Lazy[*etree.Document]
	dirty bool
}

func newPackage(logger *slog.Logger) *Package {
	return &Package{
		logger:  logger,
		parts:   make(map[string]*Part),
		relSets: make(map[string]*relationshipSet),
	}
}

func (p *Package) addRaw(name string, data []byte) *Part {
	part := &Part{pkg: p, name: name, data: data}
	part.doc = NewLazy(part.parse)
	p.parts[name] = part
	p.order = append(p.order, name)
	return part
}

// Part returns the part stored under name. A leading slash is ignored.
func (p *Package) Part(name string) (*Part, error) {
	name = strings.TrimPrefix(name, "/")
	part, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("failed to find part %s: %w", name, ErrPartNotFound)
	}
	return part, nil
}

// Parts returns every part in archive order.
func (p *Package) Parts() []*Part {
	out := make([]*Part, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.parts[name])
	}
	return out
}

// ContentType returns the declared content type of the named part, checking
// overrides before extension defaults.
func (p *Package) ContentType(name string) string {
	name = strings.TrimPrefix(name, "/")
	for _, o := range p.types.Overrides {
		if strings.EqualFold(strings.TrimPrefix(o.PartName, "/"), name) {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	for _, d := range p.types.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

// AddPart stores a new part and declares its content type.
func (p *Package) AddPart(name, contentType string, data []byte) (*Part, error) {
	name = strings.TrimPrefix(name, "/")
	if _, exists := p.parts[name]; exists {
		return nil, fmt.Errorf("failed to add part %s: already exists", name)
	}
	part := p.addRaw(name, data)
	if contentType != "" && p.ContentType(name) != contentType {
		p.types.Overrides = append(p.types.Overrides, xmlOverride{PartName: "/" + name, ContentType: contentType})
		if err := p.storeContentTypes(); err != nil {
			return nil, err
		}
	}
	return part, nil
}

// nextPartName returns the first name produced by pattern (one %d verb,
// counting from 1) that is not used yet.
func (p *Package) nextPartName(pattern string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf(pattern, i)
		if _, used := p.parts[name]; !used {
			return name
		}
	}
}

// Related returns the first part the package itself links to with relType.
func (p *Package) Related(relType string) (*Part, error) {
	return p.related("", relType)
}

func (p *Package) storeContentTypes() error {
	p.types.Xmlns = nsContentTypes
	data, err := marshalXMLPart(p.types)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", contentTypesPart, err)
	}
	if part, ok := p.parts[contentTypesPart]; ok {
		part.SetBytes(data)
		return nil
	}
	p.addRaw(contentTypesPart, data)
	return nil
}

// --- Relationships ---

// relsPartName returns the name of the relationship part for source. The
// empty source denotes the package itself.
func relsPartName(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

func (p *Package) relationships(source string) (*relationshipSet, error) {
	if set, ok := p.relSets[source]; ok {
		return set, nil
	}
	set := &relationshipSet{source: source}
	if part, ok := p.parts[relsPartName(source)]; ok {
		var rels xmlRelationships
		if err := xml.Unmarshal(part.Bytes(), &rels); err != nil {
			return nil, fmt.Errorf("failed to parse relationships %s: %w", part.name, err)
		}
		for _, r := range rels.Relationships {
			set.rels = append(set.rels, Relationship{
				ID:       r.ID,
				Type:     r.Type,
				Target:   r.Target,
				External: strings.EqualFold(r.TargetMode, "External"),
			})
		}
	}
	p.relSets[source] = set
	return set, nil
}

func (p *Package) storeRelationships(set *relationshipSet) error {
	out := xmlRelationships{Xmlns: nsRelationships}
	for _, r := range set.rels {
		x := xmlRelationship{ID: r.ID, Type: r.Type, Target: r.Target}
		if r.External {
			x.TargetMode = "External"
		}
		out.Relationships = append(out.Relationships, x)
	}
	data, err := marshalXMLPart(out)
	if err != nil {
		return fmt.Errorf("failed to encode relationships of %q: %w", set.source, err)
	}
	name := relsPartName(set.source)
	if part, ok := p.parts[name]; ok {
		part.SetBytes(data)
		return nil
	}
	p.addRaw(name, data)
	return nil
}

// resolve maps a relationship of source to the part it targets.
func (p *Package) resolve(source string, rel Relationship) (*Part, error) {
	if rel.External {
		return nil, fmt.Errorf("relationship %s of %q is external: %w", rel.ID, source, ErrPartNotFound)
	}
	return p.Part(resolveRelativePath(path.Dir(source), rel.Target))
}

func (p *Package) related(source, relType string) (*Part, error) {
	set, err := p.relationships(source)
	if err != nil {
		return nil, err
	}
	for _, r := range set.rels {
		if r.Type == relType && !r.External {
			return p.resolve(source, r)
		}
	}
	return nil, fmt.Errorf("failed to find %s relationship of %q: %w", path.Base(relType), source, ErrPartNotFound)
}

// --- Part ---

// Name returns the package path of the part without a leading slash.
func (pt *Part) Name() string { return pt.name }

// ContentType returns the declared content type.
func (pt *Part) ContentType() string { return pt.pkg.ContentType(pt.name) }

func (pt *Part) parse() (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(pt.data); err != nil {
		return nil, fmt.Errorf("failed to parse part %s: %w", pt.name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("failed to parse part %s: no root element", pt.name)
	}
	return doc, nil
}

// XML returns the parsed document of the part. The document is parsed once
// and edits made to it are written back when the package is saved, provided
// the editor called MarkDirty.
func (pt *Part) XML() (*etree.Document, error) {
	return pt.doc.Value()
}

// Bytes returns the current serialized content.
func (pt *Part) Bytes() []byte {
	if pt.dirty && pt.doc.IsValueCreated() {
		doc := pt.doc.MustValue()
		data, err := doc.WriteToBytes()
		if err != nil {
			pt.pkg.logger.Warn("failed to serialize part", "part", pt.name, "error", err)
			return pt.data
		}
		pt.data = data
		pt.dirty = false
	}
	return pt.data
}

// SetBytes replaces the raw content and drops the parsed document.
func (pt *Part) SetBytes(data []byte) {
	pt.data = data
	pt.dirty = false
	pt.doc.Reset()
}

// MarkDirty records that the parsed document was edited.
func (pt *Part) MarkDirty() { pt.dirty = true }

// Relationships returns the outgoing relationships of the part.
func (pt *Part) Relationships() ([]Relationship, error) {
	set, err := pt.pkg.relationships(pt.name)
	if err != nil {
		return nil, err
	}
	return set.rels, nil
}

// Related returns the first part linked with relType.
func (pt *Part) Related(relType string) (*Part, error) {
	return pt.pkg.related(pt.name, relType)
}

// RelatedByID returns the part targeted by relationship id.
func (pt *Part) RelatedByID(id string) (*Part, error) {
	set, err := pt.pkg.relationships(pt.name)
	if err != nil {
		return nil, err
	}
	for _, r := range set.rels {
		if r.ID == id {
			return pt.pkg.resolve(pt.name, r)
		}
	}
	return nil, fmt.Errorf("failed to find relationship %s of %s: %w", id, pt.name, ErrPartNotFound)
}

// RelatedAll returns every internal part linked with relType, in
// relationship order.
func (pt *Part) RelatedAll(relType string) ([]*Part, error) {
	set, err := pt.pkg.relationships(pt.name)
	if err != nil {
		return nil, err
	}
	var out []*Part
	for _, r := range set.rels {
		if r.Type != relType || r.External {
			continue
		}
		target, err := pt.pkg.resolve(pt.name, r)
		if err != nil {
			return nil, err
		}
		out = append(out, target)
	}
	return out, nil
}

// AddRelationship links the part to the package part named target and
// returns the new relationship id.
func (pt *Part) AddRelationship(relType, target string) (string, error) {
	set, err := pt.pkg.relationships(pt.name)
	if err != nil {
		return "", err
	}
	next := 1
	for _, r := range set.rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n >= next {
			next = n + 1
		}
	}
	id := "rId" + strconv.Itoa(next)
	set.rels = append(set.rels, Relationship{ID: id, Type: relType, Target: "/" + strings.TrimPrefix(target, "/")})
	if err := pt.pkg.storeRelationships(set); err != nil {
		return "", err
	}
	return id, nil
}

// --- helpers ---

func marshalXMLPart(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolveRelativePath joins a relationship target to the directory of its
// source part. Absolute targets are package-rooted. Leading ".." segments
// never climb above the package root.
func resolveRelativePath(base, rel string) string {
	if strings.HasPrefix(rel, "/") {
		return strings.TrimPrefix(rel, "/")
	}
	if base == "." {
		base = ""
	}

	var result []string
	if base != "" {
		result = strings.Split(base, "/")
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		} else if part != "." && part != "" {
			result = append(result, part)
		}
	}
	return strings.Join(result, "/")
}
