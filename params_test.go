package cyq

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"n.name", "n_name"},
		{"movie-titles", "movie_titles"},
		{"a  b", "a_b"},
		{"já", "j_"},
		{"x_1", "x_1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeName(tt.in))
		})
	}
}

func TestParams_Allocate(t *testing.T) {
	t.Parallel()

	p := Params{}

	names := []string{
		p.allocate(prefixWhere, "n.name", "a"),
		p.allocate(prefixWhere, "n.name", "b"),
		p.allocate(prefixWhere, "n_name", "c"),
		p.allocate("", "n.name", "d"),
	}

	assert.Equal(t, []string{"where_n_name", "where_n_name_2", "where_n_name_3", "n_name"}, names)

	want := Params{
		"where_n_name":   "a",
		"where_n_name_2": "b",
		"where_n_name_3": "c",
		"n_name":         "d",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParams_AllocateNeverOverwrites(t *testing.T) {
	t.Parallel()

	p := Params{"where_x_2": "taken"}

	assert.Equal(t, "where_x", p.allocate(prefixWhere, "x", 1))
	assert.Equal(t, "where_x_3", p.allocate(prefixWhere, "x", 2))
	assert.Equal(t, "taken", p["where_x_2"])
}

func TestParams_Put(t *testing.T) {
	t.Parallel()

	p := Params{}
	p.put("n_name", "a")
	p.put("n_name", "b")

	assert.Equal(t, Params{"n_name": "b"}, p)
}

func TestParams_Clone(t *testing.T) {
	t.Parallel()

	var nilParams Params
	assert.Equal(t, Params{}, nilParams.Clone())

	p := Params{"a": 1}
	c := p.Clone()
	c["a"] = 2

	assert.Equal(t, 1, p["a"])
}
