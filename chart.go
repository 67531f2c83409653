package slidedotnet

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ChartType is the plot element of a chart part (c:barChart, c:pieChart,
// ...), named by its local name.
type ChartType string

const (
	ChartTypeArea      ChartType = "areaChart"
	ChartTypeArea3D    ChartType = "area3DChart"
	ChartTypeBar       ChartType = "barChart"
	ChartTypeBar3D     ChartType = "bar3DChart"
	ChartTypeBubble    ChartType = "bubbleChart"
	ChartTypeDoughnut  ChartType = "doughnutChart"
	ChartTypeLine      ChartType = "lineChart"
	ChartTypeLine3D    ChartType = "line3DChart"
	ChartTypeOfPie     ChartType = "ofPieChart"
	ChartTypePie       ChartType = "pieChart"
	ChartTypePie3D     ChartType = "pie3DChart"
	ChartTypeRadar     ChartType = "radarChart"
	ChartTypeScatter   ChartType = "scatterChart"
	ChartTypeStock     ChartType = "stockChart"
	ChartTypeSurface   ChartType = "surfaceChart"
	ChartTypeSurface3D ChartType = "surface3DChart"
)

// hasCategories reports whether charts of this kind share a category axis.
func (t ChartType) hasCategories() bool {
	return t != ChartTypeScatter && t != ChartTypeBubble
}

// Chart is a p:graphicFrame holding a c:chart reference.
type Chart struct {
	baseShape
	part       *Part
	plotArea   *etree.Element
	series     *Lazy[[]*Series]
	categories *Lazy[[]*Category]
}

func newChart(el *etree.Element, owner shapeTreeOwner, parent *Group) (*Chart, error) {
	ref := el.FindElement("./graphic/graphicData/chart")
	if ref == nil {
		return nil, missingElement(owner.ownerPart().Name(), "c:chart")
	}
	rid := ref.SelectAttrValue("r:id", "")
	if rid == "" {
		return nil, missingElement(owner.ownerPart().Name(), "c:chart@r:id")
	}
	part, err := owner.ownerPart().RelatedByID(rid)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart part: %w", err)
	}
	doc, err := part.XML()
	if err != nil {
		return nil, err
	}
	plotArea := doc.Root().FindElement("./chart/plotArea")
	if plotArea == nil {
		return nil, missingElement(part.Name(), "c:plotArea")
	}

	c := &Chart{baseShape: newBaseShape(el, owner, parent), part: part, plotArea: plotArea}
	c.series = lazyOf(c.loadSeries)
	c.categories = NewLazy(c.loadCategories)
	return c, nil
}

// Part returns the chart part.
func (c *Chart) Part() *Part { return c.part }

// plots returns the plot elements (c:barChart, c:lineChart, ...) of the
// plot area in document order.
func (c *Chart) plots() []*etree.Element {
	var out []*etree.Element
	for _, el := range c.plotArea.ChildElements() {
		if strings.HasSuffix(el.Tag, "Chart") {
			out = append(out, el)
		}
	}
	return out
}

// Type returns the kind of the first plot of the chart. Combination charts
// report their first plot; Series.Type tells the kind of each series.
func (c *Chart) Type() ChartType {
	if plots := c.plots(); len(plots) > 0 {
		return ChartType(plots[0].Tag)
	}
	return ""
}

// Title returns the chart title text when the chart has one.
func (c *Chart) Title() (string, bool) {
	doc, err := c.part.XML()
	if err != nil {
		return "", false
	}
	title := doc.Root().FindElement("./chart/title")
	if title == nil {
		return "", false
	}
	var sb strings.Builder
	for _, t := range title.FindElements(".//t") {
		sb.WriteString(t.Text())
	}
	if sb.Len() == 0 {
		if v := title.FindElement("./tx/strRef/strCache/pt/v"); v != nil {
			sb.WriteString(v.Text())
		}
	}
	return sb.String(), true
}

// Series returns the series of every plot in document order.
func (c *Chart) Series() []*Series { return c.series.MustValue() }

func (c *Chart) loadSeries() []*Series {
	var out []*Series
	for _, plot := range c.plots() {
		kind := ChartType(plot.Tag)
		for _, ser := range plot.SelectElements("ser") {
			out = append(out, newSeries(c, ser, kind, len(out)))
		}
	}
	return out
}

// HasCategories reports whether the chart kind has a category axis.
// Scatter and bubble charts have none.
func (c *Chart) HasCategories() bool { return c.Type().hasCategories() }

// Categories returns the categories shared by all series: the leaf
// categories for multi-level axes. It returns nil for scatter and bubble
// charts.
func (c *Chart) Categories() ([]*Category, error) { return c.categories.Value() }

func (c *Chart) markDirty() { c.part.MarkDirty() }

// --- Series ---

// Series is one c:ser of a chart.
type Series struct {
	chart  *Chart
	el     *etree.Element
	kind   ChartType
	index  int
	values *Lazy[[]float64]
	name   *Lazy[string]
}

func newSeries(chart *Chart, el *etree.Element, kind ChartType, index int) *Series {
	s := &Series{chart: chart, el: el, kind: kind, index: index}
	s.values = NewLazy(s.loadValues)
	s.name = NewLazy(s.loadName)
	return s
}

// Type returns the kind of plot that holds the series.
func (s *Series) Type() ChartType { return s.kind }

// Index returns the position of the series within the chart.
func (s *Series) Index() int { return s.index }

// PointValues returns the values of the series: c:val, or c:yVal for
// scatter and bubble series.
func (s *Series) PointValues() ([]float64, error) {
	return s.values.Value()
}

func (s *Series) loadValues() ([]float64, error) {
	val := s.el.SelectElement("val")
	if val == nil {
		val = s.el.SelectElement("yVal")
	}
	if val == nil {
		return nil, missingElement(s.chart.part.Name(), "c:val")
	}
	if lit := val.SelectElement("numLit"); lit != nil {
		return cachedNumbers(lit)
	}
	ref := val.SelectElement("numRef")
	if ref == nil {
		return nil, missingElement(s.chart.part.Name(), "c:numRef")
	}
	return s.chart.resolveNumbers(ref)
}

// HasName reports whether the series defines a name (c:tx).
func (s *Series) HasName() bool {
	return s.el.SelectElement("tx") != nil
}

// Name returns the series name. It fails with ErrSeriesHasNoName when
// HasName is false.
func (s *Series) Name() (string, error) {
	if !s.HasName() {
		return "", ErrSeriesHasNoName
	}
	return s.name.Value()
}

func (s *Series) loadName() (string, error) {
	tx := s.el.SelectElement("tx")
	if v := tx.SelectElement("v"); v != nil {
		return v.Text(), nil
	}
	ref := tx.SelectElement("strRef")
	if ref == nil {
		return "", missingElement(s.chart.part.Name(), "c:strRef")
	}
	return s.chart.resolveSingleString(ref)
}
