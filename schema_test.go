package cyq_test

import (
	"context"
	"testing"

	"github.com/rlch/cyq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type introspectingDB struct {
	fakeDB

	models []cyq.NodeModel
}

func (d *introspectingDB) IntrospectSchema(context.Context) ([]cyq.NodeModel, error) {
	return d.models, nil
}

func TestIntrospect(t *testing.T) {
	t.Parallel()

	want := []cyq.NodeModel{{Name: "Person"}}

	got, err := cyq.Introspect(context.Background(), &introspectingDB{models: want})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = cyq.Introspect(context.Background(), &fakeDB{})
	require.ErrorIs(t, err, cyq.ErrSchemaUnsupported)

	_, err = cyq.Introspect(context.Background(), nil)
	require.ErrorIs(t, err, cyq.ErrNoDatabase)
}
