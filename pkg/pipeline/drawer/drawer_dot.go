package drawer

import (
	"fmt"
	"io"
	"os"
	"slices"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-kanaval/internal/store"
	"github.com/askiada/go-kanaval/pkg/pipeline/measure"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// DOTDrawer renders the step graph of a run in the Graphviz DOT language.
type DOTDrawer struct {
	store    store.Store[string, string]
	graph    graph.Graph[string, string]
	fileName string
	out      io.Writer
}

// NewDOTDrawer creates a drawer writing to fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	d := &DOTDrawer{fileName: fileName}
	d.Reset()

	return d
}

// NewDOTWriter creates a drawer writing to out.
func NewDOTWriter(out io.Writer) *DOTDrawer {
	d := &DOTDrawer{out: out}
	d.Reset()

	return d
}

func (d *DOTDrawer) Reset() {
	st := store.NewOrdered[string, string]()
	d.store = st
	d.graph = graph.NewWithStore(graph.StringHash, st, graph.Directed())
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"), graph.VertexAttribute("style", "filled"))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

var statusColors = map[model.Status][3]uint8{
	model.StatusPending: {255, 255, 255},
	model.StatusPassed:  {144, 238, 144},
	model.StatusFailed:  {240, 128, 128},
	model.StatusSkipped: {211, 211, 211},
}

func hexColor(rgb [3]uint8) (string, error) {
	c, err := colors.RGB(rgb[0], rgb[1], rgb[2]) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return c.ToHEX().String(), nil
}

// SetStatus fills the step with the colour of its outcome.
func (d *DOTDrawer) SetStatus(name string, status model.Status, caption string) error {
	fill, err := hexColor(statusColors[status])
	if err != nil {
		return err
	}

	err = d.store.UpdateVertex(name, func(p *graph.VertexProperties) {
		p.Attributes["fillcolor"] = fill
		if caption != "" {
			p.Attributes["xlabel"] = caption
		}
	})
	if err != nil {
		return errors.Wrapf(err, "unable to update vertex %s", name)
	}

	return nil
}

// Draw writes the DOT description of the graph.
func (d *DOTDrawer) Draw() error {
	out := d.out
	if out == nil {
		file, err := os.Create(d.fileName)
		if err != nil {
			return errors.Wrapf(err, "unable to create file %s", d.fileName)
		}
		defer file.Close()
		out = file
	}

	err := d.dot(out)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure colours the border of every step from blue to red by average
// duration, the slowest step being red.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	all := msr.AllMetrics()
	vertices, err := d.store.ListVertices()
	if err != nil {
		return errors.Wrap(err, "unable to list vertices")
	}

	var durations []time.Duration
	for _, name := range vertices {
		if mt, ok := all[name]; ok && mt.AVGDuration() > 0 {
			durations = append(durations, mt.AVGDuration())
		}
	}
	if len(durations) == 0 {
		return nil
	}
	maxValue, minValue := slices.Max(durations), slices.Min(durations)

	for _, name := range vertices {
		mt, ok := all[name]
		if !ok || mt.AVGDuration() == 0 {
			continue
		}
		curr := mt.AVGDuration()
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}
		border, err := hexColor([3]uint8{uint8(maxRGB * fraction), 0, uint8(maxRGB - maxRGB*fraction)})
		if err != nil {
			return err
		}

		err = d.store.UpdateVertex(name, func(p *graph.VertexProperties) {
			p.Attributes["color"] = border
			p.Attributes["penwidth"] = "2"
			if _, ok := p.Attributes["xlabel"]; !ok {
				p.Attributes["xlabel"] = curr.String()
			}
		})
		if err != nil {
			return errors.Wrap(err, "unable to update vertex")
		}
	}

	return nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func (d *DOTDrawer) dot(wrt io.Writer, options ...func(*description)) error {
	desc, err := d.generateDOT(options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [DOT] method.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT walks the ordered store rather than the adjacency map so the
// output is stable.
func (d *DOTDrawer) generateDOT(options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   map[string]string{"rankdir": "TB"},
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	vertices, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}
	for _, vertex := range vertices {
		_, sourceProperties, err := d.store.Vertex(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(sourceProperties.Attributes))
		htmlAttributes := make(map[string]string)
		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)
				continue
			}
			attributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}
	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
