package cyq

import (
	"fmt"
	"strings"
)

// Model describes a node type. Only its labels are consulted while building.
type Model interface {
	Labels() []string
}

// VectorModel is a Model that knows which of its properties carry a vector
// index.
type VectorModel interface {
	Model

	// VectorIndex returns the index name for property, or false when the
	// property is not vector indexed.
	VectorIndex(property string) (string, bool)
}

type labelModel []string

func (l labelModel) Labels() []string { return l }

// Labels returns a Model carrying only the given labels.
func Labels(names ...string) Model {
	return labelModel(names)
}

// Property types with special meaning to the builder.
const (
	PropertyTypeVector = "vector"
)

// VectorIndex configures the vector index of a property. An empty Name
// defaults to idx_<property>_vector.
type VectorIndex struct {
	Name string `yaml:"name,omitempty"`
}

// Property is a single entry of a NodeModel schema.
type Property struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type,omitempty"`
	VectorIndex *VectorIndex `yaml:"vector_index,omitempty"`
}

// NodeModel is a concrete Model with a property schema.
type NodeModel struct {
	Name       string     `yaml:"name"`
	LabelSet   []string   `yaml:"labels,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
}

// Labels returns LabelSet, or Name when no labels are set.
func (m *NodeModel) Labels() []string {
	if len(m.LabelSet) == 0 && m.Name != "" {
		return []string{m.Name}
	}

	return m.LabelSet
}

// Property looks up a schema entry by name.
func (m *NodeModel) Property(name string) (Property, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return Property{}, false
}

// PropertyNames returns the schema property names in declaration order.
func (m *NodeModel) PropertyNames() []string {
	names := make([]string, len(m.Properties))
	for i, p := range m.Properties {
		names[i] = p.Name
	}

	return names
}

// VectorIndex implements VectorModel.
func (m *NodeModel) VectorIndex(property string) (string, bool) {
	p, ok := m.Property(property)
	if !ok || p.Type != PropertyTypeVector || p.VectorIndex == nil {
		return "", false
	}

	if p.VectorIndex.Name != "" {
		return p.VectorIndex.Name, true
	}

	return "idx_" + property + "_vector", true
}

// Direction is the direction of a relationship pattern.
type Direction string

// Relationship directions.
const (
	DirectionIn   Direction = "direction_in"
	DirectionOut  Direction = "direction_out"
	DirectionBoth Direction = "direction_both"
)

// ParseDirection accepts in, out, both and their direction_ forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", string(DirectionIn):
		return DirectionIn, nil
	case "out", string(DirectionOut):
		return DirectionOut, nil
	case "both", "", string(DirectionBoth):
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) valid() bool {
	return d == DirectionIn || d == DirectionOut || d == DirectionBoth
}

// RelationshipType describes a relationship: its wire type and direction.
type RelationshipType interface {
	Relationship() string
	Direction() Direction
}

// RelType is a concrete RelationshipType.
type RelType struct {
	Type string
	Dir  Direction
}

// Relationship implements RelationshipType.
func (r RelType) Relationship() string { return r.Type }

// Direction implements RelationshipType.
func (r RelType) Direction() Direction { return r.Dir }
