package report

import (
	"go/token"
	"io"

	"github.com/nickng/amdahl/scan"
	"gopkg.in/yaml.v3"
)

// Document is the machine readable form of a resolution run.
type Document struct {
	Nests []Nest `yaml:"nests"`
}

// Nest is one directive nest.
type Nest struct {
	Position  string    `yaml:"position"`
	Func      string    `yaml:"func,omitempty"`
	Kind      string    `yaml:"kind"`
	Header    string    `yaml:"header,omitempty"`
	TripCount *int64    `yaml:"trip_count,omitempty"`
	Levels    []string  `yaml:"levels,omitempty"`
	Params    []string  `yaml:"params,omitempty"`
	Bindings  []string  `yaml:"bindings,omitempty"`
	Captures  []Capture `yaml:"captures,omitempty"`
	Error     *Error    `yaml:"error,omitempty"`
}

type Capture struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Mode   string `yaml:"mode"`
	Reason string `yaml:"reason,omitempty"`
}

type Error struct {
	Key     string `yaml:"key,omitempty"`
	Message string `yaml:"message"`
}

// NewDocument describes sites.
func NewDocument(fset *token.FileSet, sites []*scan.Site) *Document {
	doc := &Document{Nests: []Nest{}}
	for _, site := range sites {
		n := Nest{
			Position: fset.Position(site.Pos()).String(),
			Kind:     site.Root.Kind().String(),
		}
		if site.Func != nil {
			n.Func = site.Func.Name.Name
		}
		if site.Err != nil {
			n.Error = &Error{Key: Key(site.Err), Message: site.Err.Error()}
		}
		if !site.OK() {
			doc.Nests = append(doc.Nests, n)
			continue
		}
		res := site.Resolved
		n.Header = res.Header().String()
		if trip, ok := res.TripCount(); ok {
			n.TripCount = &trip
		}
		n.Levels = levels(res)
		n.Params = params(res.Region)
		n.Bindings = bindings(res.Region)
		for _, c := range res.Region.Captures {
			n.Captures = append(n.Captures, Capture{
				Name:   c.Name(),
				Type:   c.Var.Type().String(),
				Mode:   c.Mode.String(),
				Reason: c.Reason,
			})
		}
		doc.Nests = append(doc.Nests, n)
	}
	return doc
}

// YAML writes sites as a YAML document.
func YAML(w io.Writer, fset *token.FileSet, sites []*scan.Site) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(fset, sites)); err != nil {
		return err
	}
	return enc.Close()
}
