package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/courier/pkg/render"
)

func TestValueTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  render.Value
		truthy bool
	}{
		{"null", render.Value{}, false},
		{"empty string", render.String(""), false},
		{"string", render.String("x"), true},
		{"false", render.Bool(false), false},
		{"true", render.Bool(true), true},
		{"zero is still truthy", render.Number(0), true},
		{"number", render.Number(42), true},
		{"empty map", render.Map(nil), false},
		{"map", render.Map(map[string]render.Value{"k": render.String("v")}), true},
		{"empty list", render.List(), false},
		{"list", render.List(render.String("a")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.truthy, tt.value.Truthy())
		})
	}
}

func TestVarsFromJSON(t *testing.T) {
	t.Parallel()

	vars := render.VarsFromJSON(map[string]any{
		"name":   "Alice",
		"count":  float64(3),
		"active": true,
		"nested": map[string]any{"plan": "pro"},
		"tags":   []any{"a", "b"},
		"empty":  nil,
	})

	assert.True(t, vars["name"].Truthy())
	assert.True(t, vars["count"].Truthy())
	assert.True(t, vars["active"].Truthy())
	assert.True(t, vars["nested"].Truthy())
	assert.True(t, vars["tags"].Truthy())
	assert.False(t, vars["empty"].Truthy())
}
