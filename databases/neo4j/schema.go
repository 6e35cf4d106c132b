package neo4j

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rlch/cyq"
)

const (
	nodePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeType, propertyName, propertyTypes
RETURN nodeType, propertyName, propertyTypes
ORDER BY nodeType, propertyName`

	vectorIndexesQuery = `SHOW VECTOR INDEXES
YIELD name, entityType, labelsOrTypes, properties
WHERE entityType = "NODE"
RETURN name, labelsOrTypes, properties`
)

// Introspect reads node labels, their properties and vector indexes from
// the database, returning one model per label sorted by name.
func Introspect(ctx context.Context, db cyq.Database) ([]cyq.NodeModel, error) {
	props, err := cyq.Run(ctx, db, cyq.ModeRead, cyq.Query{Text: nodePropertiesQuery})
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to get node properties: %w", err)
	}

	indexes, err := cyq.Run(ctx, db, cyq.ModeRead, cyq.Query{Text: vectorIndexesQuery})
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to get vector indexes: %w", err)
	}

	return modelsFromRows(props, indexes), nil
}

// IntrospectSchema implements cyq.SchemaIntrospector.
func (d *Database) IntrospectSchema(ctx context.Context) ([]cyq.NodeModel, error) {
	return Introspect(ctx, d)
}

// modelsFromRows assembles models from nodeTypeProperties rows and vector
// index rows. A property covered by a vector index gets type vector.
func modelsFromRows(props, indexes []map[string]any) []cyq.NodeModel {
	byLabel := make(map[string]*cyq.NodeModel)

	model := func(label string) *cyq.NodeModel {
		m, ok := byLabel[label]
		if !ok {
			m = &cyq.NodeModel{Name: label}
			byLabel[label] = m
		}

		return m
	}

	for _, row := range props {
		label := extractLabel(row["nodeType"])
		name, _ := row["propertyName"].(string)

		if label == "" || name == "" {
			continue
		}

		types, _ := row["propertyTypes"].([]any)
		m := model(label)
		m.Properties = append(m.Properties, cyq.Property{Name: name, Type: mapNeo4jType(types)})
	}

	for _, row := range indexes {
		index, _ := row["name"].(string)
		labels, _ := row["labelsOrTypes"].([]any)
		properties, _ := row["properties"].([]any)

		for _, l := range labels {
			label, _ := l.(string)
			if label == "" {
				continue
			}

			m := model(label)

			for _, p := range properties {
				name, _ := p.(string)
				setVectorIndex(m, name, index)
			}
		}
	}

	models := make([]cyq.NodeModel, 0, len(byLabel))
	for _, m := range byLabel {
		slices.SortFunc(m.Properties, func(a, b cyq.Property) int {
			return strings.Compare(a.Name, b.Name)
		})

		models = append(models, *m)
	}

	slices.SortFunc(models, func(a, b cyq.NodeModel) int {
		return strings.Compare(a.Name, b.Name)
	})

	return models
}

func setVectorIndex(m *cyq.NodeModel, property, index string) {
	if property == "" {
		return
	}

	vi := &cyq.VectorIndex{}
	if index != "idx_"+property+"_vector" {
		vi.Name = index
	}

	for i := range m.Properties {
		if m.Properties[i].Name == property {
			m.Properties[i].Type = cyq.PropertyTypeVector
			m.Properties[i].VectorIndex = vi

			return
		}
	}

	m.Properties = append(m.Properties, cyq.Property{
		Name:        property,
		Type:        cyq.PropertyTypeVector,
		VectorIndex: vi,
	})
}

// extractLabel turns a nodeType such as ":`Movie`" into "Movie". Multi-label
// node types keep only the first label.
func extractLabel(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}

	s = strings.TrimPrefix(s, ":")
	s, _, _ = strings.Cut(s, ":")

	return strings.Trim(s, "`\"")
}

func mapNeo4jType(types []any) string {
	if len(types) == 0 {
		return "any"
	}

	t, _ := types[0].(string)

	switch {
	case strings.HasPrefix(t, "List"), strings.HasSuffix(t, "Array"):
		return "list"
	case strings.Contains(t, "Long"), strings.Contains(t, "Integer"):
		return "int"
	case strings.Contains(t, "Double"), strings.Contains(t, "Float"):
		return "float"
	case strings.Contains(t, "Boolean"):
		return "bool"
	case strings.Contains(t, "String"):
		return "string"
	case strings.Contains(t, "DateTime"):
		return "datetime"
	case strings.Contains(t, "Date"):
		return "date"
	case strings.Contains(t, "Point"):
		return "point"
	default:
		return "any"
	}
}
