package exports

import (
	"encoding/xml"
	"io"

	"elca-web/internal/models"
)

type projectDoc struct {
	XMLName xml.Name   `xml:"elca"`
	Project projectXML `xml:"project"`
}

type projectXML struct {
	ID              uint         `xml:"id,attr"`
	ProjectNr       string       `xml:"projectNr,attr,omitempty"`
	LifeTime        int          `xml:"lifeTime,attr"`
	NetFloorSpace   float64      `xml:"netFloorSpace,attr"`
	GrossFloorSpace float64      `xml:"grossFloorSpace,attr"`
	Name            string       `xml:"name"`
	Description     string       `xml:"description,omitempty"`
	Variants        []variantXML `xml:"variants>variant"`
}

type variantXML struct {
	ID       uint         `xml:"id,attr"`
	Name     string       `xml:"name,attr"`
	Phase    string       `xml:"phase,attr,omitempty"`
	Current  bool         `xml:"current,attr,omitempty"`
	Elements []elementXML `xml:"elements>element"`
}

type elementXML struct {
	ID         uint           `xml:"id,attr"`
	DIN276     string         `xml:"din276,attr"`
	Quantity   float64        `xml:"quantity,attr"`
	RefUnit    string         `xml:"refUnit,attr"`
	Name       string         `xml:"name"`
	Components []componentXML `xml:"components>component"`
}

type componentXML struct {
	ProcessConfig string  `xml:"processConfig,attr"`
	Quantity      float64 `xml:"quantity,attr"`
	LifeTime      int     `xml:"lifeTime,attr"`
	IsLayer       bool    `xml:"isLayer,attr"`
	LayerPosition int     `xml:"layerPosition,attr,omitempty"`
}

// WriteProjectXML writes the project with all variants. elements is keyed
// by variant id; components must be preloaded with their process config.
func WriteProjectXML(w io.Writer, p models.Project, elements map[uint][]models.Element) error {
	doc := projectDoc{Project: projectXML{
		ID:              p.ID,
		ProjectNr:       p.ProjectNr,
		LifeTime:        p.LifeTime,
		NetFloorSpace:   p.NetFloorSpace,
		GrossFloorSpace: p.GrossFloorSpace,
		Name:            p.Name,
		Description:     p.Description,
	}}

	for _, v := range p.Variants {
		vx := variantXML{ID: v.ID, Name: v.Name, Phase: v.PhaseIdent, Current: v.ID == p.CurrentVariantID}
		for _, e := range elements[v.ID] {
			ex := elementXML{ID: e.ID, DIN276: e.ElementTypeCode, Quantity: e.Quantity, RefUnit: e.RefUnit, Name: e.Name}
			for _, c := range e.Components {
				ex.Components = append(ex.Components, componentXML{
					ProcessConfig: c.ProcessConfig.Name,
					Quantity:      c.Quantity,
					LifeTime:      c.LifeTime,
					IsLayer:       c.IsLayer,
					LayerPosition: c.LayerPosition,
				})
			}
			vx.Elements = append(vx.Elements, ex)
		}
		doc.Project.Variants = append(doc.Project.Variants, vx)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Flush()
}
