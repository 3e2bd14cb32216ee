package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(id, size, color string, stock int, active bool) *Variant {
	return &Variant{ID: id, Size: size, Color: color, Stock: stock, Active: active}
}

func TestClassifyAxes(t *testing.T) {
	tests := []struct {
		name     string
		variants []*Variant
		want     Scenario
	}{
		{
			name:     "StockOnly",
			variants: []*Variant{v("v1", "", "", 10, true)},
			want:     ScenarioStockOnly,
		},
		{
			name: "SizeOnly",
			variants: []*Variant{
				v("v1", "40", "", 3, true),
				v("v2", "41", "", 0, true),
			},
			want: ScenarioSizeOnly,
		},
		{
			name: "ColorOnly",
			variants: []*Variant{
				v("v1", "", "black", 3, true),
				v("v2", "", "white", 1, true),
			},
			want: ScenarioColorOnly,
		},
		{
			name: "SizeAndColor",
			variants: []*Variant{
				v("v1", "S", "red", 0, true),
				v("v2", "S", "blue", 5, true),
			},
			want: ScenarioSizeAndColor,
		},
		{
			name: "InconsistentAxisUsageFallsBack",
			variants: []*Variant{
				v("v1", "42", "", 2, true),
				v("v2", "", "", 7, true),
			},
			want: ScenarioSizeAndColor,
		},
		{
			name:     "NoVariants",
			variants: nil,
			want:     ScenarioStockOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAxes(tt.variants))
		})
	}
}

func TestResolve(t *testing.T) {
	variants := []*Variant{
		v("v1", "S", "red", 0, true),
		v("v2", "S", "blue", 5, true),
		v("v3", "M", "red", 3, true),
	}

	t.Run("IncompleteSelection", func(t *testing.T) {
		variant, complete := Resolve(variants, Selection{Size: "S"})
		assert.Nil(t, variant)
		assert.False(t, complete)
	})

	t.Run("FullSelection", func(t *testing.T) {
		variant, complete := Resolve(variants, Selection{Size: "S", Color: "blue"})
		require.True(t, complete)
		require.NotNil(t, variant)
		assert.Equal(t, "v2", variant.ID)
	})

	t.Run("NoMatchingVariant", func(t *testing.T) {
		variant, complete := Resolve(variants, Selection{Size: "M", Color: "blue"})
		assert.True(t, complete)
		assert.Nil(t, variant)
	})

	t.Run("StockOnlyResolvesImmediately", func(t *testing.T) {
		single := []*Variant{v("v9", "", "", 4, true)}
		variant, complete := Resolve(single, Selection{})
		require.True(t, complete)
		require.NotNil(t, variant)
		assert.Equal(t, "v9", variant.ID)
	})

	t.Run("InconsistentAxesCompareEmptyAsEqual", func(t *testing.T) {
		mixed := []*Variant{
			v("v1", "42", "", 2, true),
			v("v2", "", "", 7, true),
		}
		variant, complete := Resolve(mixed, Selection{Size: "42"})
		require.True(t, complete)
		require.NotNil(t, variant)
		assert.Equal(t, "v1", variant.ID)
	})
}

// Selecting size=S must disable red (its S variant has no stock) and enable
// blue; selecting color=red must disable S and enable M.
func TestOptionEnabled_CrossAxis(t *testing.T) {
	variants := []*Variant{
		v("v1", "S", "red", 0, true),
		v("v2", "S", "blue", 5, true),
		v("v3", "M", "red", 3, true),
	}

	t.Run("SizeSelected", func(t *testing.T) {
		sel := Selection{Size: "S"}
		assert.False(t, OptionEnabled(variants, AxisColor, "red", sel, nil))
		assert.True(t, OptionEnabled(variants, AxisColor, "blue", sel, nil))
	})

	t.Run("ColorSelected", func(t *testing.T) {
		sel := Selection{Color: "red"}
		assert.False(t, OptionEnabled(variants, AxisSize, "S", sel, nil))
		assert.True(t, OptionEnabled(variants, AxisSize, "M", sel, nil))
	})

	t.Run("InactiveVariantDisablesOption", func(t *testing.T) {
		inactive := []*Variant{v("v1", "S", "red", 10, false)}
		assert.False(t, OptionEnabled(inactive, AxisColor, "red", Selection{Size: "S"}, nil))
	})

	t.Run("CartQuantityCountsAgainstStock", func(t *testing.T) {
		sel := Selection{Size: "S"}
		inCart := map[string]int{"v2": 5}
		assert.False(t, OptionEnabled(variants, AxisColor, "blue", sel, inCart))
	})
}

func TestOptionStates(t *testing.T) {
	variants := []*Variant{
		v("v1", "S", "red", 0, true),
		v("v2", "S", "blue", 5, true),
		v("v3", "M", "red", 3, true),
	}

	states := OptionStates(variants, AxisColor, Selection{Size: "S"}, nil)
	require.Len(t, states, 2)
	assert.Equal(t, OptionState{Value: "red", Enabled: false}, states[0])
	assert.Equal(t, OptionState{Value: "blue", Enabled: true}, states[1])
}

func TestResolveAvailability(t *testing.T) {
	variants := []*Variant{
		v("v1", "S", "red", 0, true),
		v("v2", "S", "blue", 5, true),
	}

	t.Run("Purchasable", func(t *testing.T) {
		a := ResolveAvailability(variants, Selection{Size: "S", Color: "blue"}, nil)
		assert.True(t, a.Purchasable)
		assert.Equal(t, 5, a.MaxAddable)
	})

	t.Run("CartReducesMaxAddable", func(t *testing.T) {
		a := ResolveAvailability(variants, Selection{Size: "S", Color: "blue"}, map[string]int{"v2": 3})
		assert.True(t, a.Purchasable)
		assert.Equal(t, 2, a.MaxAddable)
	})

	t.Run("CartExhaustsStock", func(t *testing.T) {
		a := ResolveAvailability(variants, Selection{Size: "S", Color: "blue"}, map[string]int{"v2": 5})
		assert.False(t, a.Purchasable)
		assert.Equal(t, 0, a.MaxAddable)
	})

	t.Run("OutOfStockVariant", func(t *testing.T) {
		a := ResolveAvailability(variants, Selection{Size: "S", Color: "red"}, nil)
		assert.False(t, a.Purchasable)
		assert.Equal(t, 0, a.MaxAddable)
	})

	t.Run("Incomplete", func(t *testing.T) {
		a := ResolveAvailability(variants, Selection{Size: "S"}, nil)
		assert.False(t, a.Complete)
		assert.Nil(t, a.Variant)
		assert.False(t, a.Purchasable)
	})
}
