package slidedotnet

import (
	"github.com/beevik/etree"
)

// OLEObject is a p:graphicFrame holding an embedded or linked OLE object.
type OLEObject struct {
	baseShape
	obj *etree.Element
}

func newOLEObject(el *etree.Element, owner shapeTreeOwner, parent *Group) (*OLEObject, error) {
	data := el.FindElement("./graphic/graphicData")
	obj := data.FindElement(".//oleObj")
	if obj == nil {
		return nil, missingElement(owner.ownerPart().Name(), "p:oleObj")
	}
	return &OLEObject{baseShape: newBaseShape(el, owner, parent), obj: obj}, nil
}

// ProgID returns the programmatic identifier of the object's server, such
// as "Excel.Sheet.12".
func (o *OLEObject) ProgID() string { return o.obj.SelectAttrValue("progId", "") }

// ObjectPart returns the embedded object part, or nil for linked objects.
func (o *OLEObject) ObjectPart() (*Part, error) {
	rid := o.obj.SelectAttrValue("r:id", "")
	if rid == "" {
		return nil, nil
	}
	return o.part().RelatedByID(rid)
}
