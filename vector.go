package cyq

import "fmt"

// VectorQuery is the query vector of a vector search: either an inline
// embedding bound as a parameter, or the same property of a node bound
// earlier in the query.
type VectorQuery struct {
	embedding []float64
	alias     string
}

// Embedding queries with an inline vector.
func Embedding(v []float64) VectorQuery {
	return VectorQuery{embedding: v}
}

// NodeVector queries with the vector property of a previously bound node.
func NodeVector(alias string) VectorQuery {
	return VectorQuery{alias: alias}
}

// VectorSearch describes a vector index lookup.
type VectorSearch struct {
	Model     Model
	Property  string
	Neighbors int
	Query     VectorQuery

	// NodeAlias defaults to <Property>_node.
	NodeAlias string

	// ScoreAlias defaults to <Property>_score.
	ScoreAlias string
}

type vectorClause struct {
	indexParam string
	kParam     string
	query      string
	nodeAlias  string
	scoreAlias string
}

func (v *vectorClause) String() string {
	return fmt.Sprintf("CALL db.index.vector.queryNodes($%s, $%s, %s) YIELD node AS %s, score AS %s",
		v.indexParam, v.kParam, v.query, v.nodeAlias, v.scoreAlias)
}

// index resolves the vector index name of the searched property.
func (s VectorSearch) index() (string, error) {
	if s.Property == "" {
		return "", fmt.Errorf("%w: vector search needs a property", ErrInvalidArgument)
	}

	vm, ok := s.Model.(VectorModel)
	if !ok {
		return "", fmt.Errorf("%w: %s (model has no vector schema)", ErrNotVectorIndexed, s.Property)
	}

	name, ok := vm.VectorIndex(s.Property)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotVectorIndexed, s.Property)
	}

	return name, nil
}

func (s VectorSearch) validate() error {
	if s.Neighbors <= 0 {
		return fmt.Errorf("%w: vector search on %q needs a positive neighbor count, got %d",
			ErrInvalidArgument, s.Property, s.Neighbors)
	}

	if s.Query.alias == "" && len(s.Query.embedding) == 0 {
		return fmt.Errorf("%w: vector search on %q has no query vector", ErrInvalidArgument, s.Property)
	}

	return nil
}
