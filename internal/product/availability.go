package product

// Scenario classifies a product by which attribute axes its variants vary on.
type Scenario string

const (
	ScenarioStockOnly    Scenario = "stock-only"
	ScenarioSizeOnly     Scenario = "size-only"
	ScenarioColorOnly    Scenario = "color-only"
	ScenarioSizeAndColor Scenario = "size-and-color"
)

// Axis names a selectable variant attribute.
type Axis string

const (
	AxisSize  Axis = "size"
	AxisColor Axis = "color"
)

// Selection is the user's partial size/color choice. Empty string means the
// axis is not chosen yet.
type Selection struct {
	Size  string
	Color string
}

// OptionState reports whether a single attribute value can still lead to a
// purchasable variant given the rest of the current selection.
type OptionState struct {
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// Availability is the resolver output for one product + selection.
type Availability struct {
	Scenario    Scenario `json:"scenario"`
	Variant     *Variant `json:"variant,omitempty"`
	Complete    bool     `json:"complete"`
	Purchasable bool     `json:"purchasable"`
	MaxAddable  int      `json:"max_addable"`
}

// ClassifyAxes determines the variant scenario for a product. Variant sets
// with inconsistent axis usage (some rows carry a size, some don't) fall back
// to size-and-color; missing fields then compare equal-when-both-empty.
func ClassifyAxes(variants []*Variant) Scenario {
	var anySize, anyColor bool
	allSize, allColor := true, true

	for _, v := range variants {
		if v.Size != "" {
			anySize = true
		} else {
			allSize = false
		}
		if v.Color != "" {
			anyColor = true
		} else {
			allColor = false
		}
	}

	sizeConsistent := allSize || !anySize
	colorConsistent := allColor || !anyColor
	if !sizeConsistent || !colorConsistent {
		return ScenarioSizeAndColor
	}

	switch {
	case anySize && anyColor:
		return ScenarioSizeAndColor
	case anySize:
		return ScenarioSizeOnly
	case anyColor:
		return ScenarioColorOnly
	default:
		return ScenarioStockOnly
	}
}

// Resolve picks the concrete variant for a selection. The second return is
// false while the scenario still needs an axis the user hasn't chosen.
func Resolve(variants []*Variant, sel Selection) (*Variant, bool) {
	scenario := ClassifyAxes(variants)

	switch scenario {
	case ScenarioStockOnly:
		if len(variants) == 0 {
			return nil, true
		}
		return variants[0], true

	case ScenarioSizeOnly:
		if sel.Size == "" {
			return nil, false
		}
	case ScenarioColorOnly:
		if sel.Color == "" {
			return nil, false
		}
	case ScenarioSizeAndColor:
		if sel.Size == "" || sel.Color == "" {
			return nil, false
		}
	}

	for _, v := range variants {
		if matches(v, scenario, sel) {
			return v, true
		}
	}
	return nil, true
}

func matches(v *Variant, scenario Scenario, sel Selection) bool {
	switch scenario {
	case ScenarioSizeOnly:
		return v.Size == sel.Size
	case ScenarioColorOnly:
		return v.Color == sel.Color
	default:
		// Empty-vs-empty compares equal, which is what carries variant sets
		// with missing axis fields.
		return v.Size == sel.Size && v.Color == sel.Color
	}
}

// Options returns the distinct values present on an axis, in variant order.
func Options(variants []*Variant, axis Axis) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range variants {
		val := axisValue(v, axis)
		if val == "" || seen[val] {
			continue
		}
		seen[val] = true
		out = append(out, val)
	}
	return out
}

// OptionEnabled reports whether choosing value on axis, combined with the
// rest of the current selection, can still reach a variant with stock left
// beyond what the cart already holds.
func OptionEnabled(variants []*Variant, axis Axis, value string, sel Selection, inCart map[string]int) bool {
	for _, v := range variants {
		if axisValue(v, axis) != value {
			continue
		}
		if other := otherAxisValue(sel, axis); other != "" && axisValue(v, otherAxis(axis)) != other {
			continue
		}
		if v.Active && v.Stock-inCart[v.ID] > 0 {
			return true
		}
	}
	return false
}

// OptionStates evaluates OptionEnabled for every value on an axis.
func OptionStates(variants []*Variant, axis Axis, sel Selection, inCart map[string]int) []OptionState {
	values := Options(variants, axis)
	out := make([]OptionState, 0, len(values))
	for _, val := range values {
		out = append(out, OptionState{
			Value:   val,
			Enabled: OptionEnabled(variants, axis, val, sel, inCart),
		})
	}
	return out
}

// Resolve + purchasability in one call. MaxAddable is the quantity the user
// can still add on top of what their cart already holds.
func ResolveAvailability(variants []*Variant, sel Selection, inCart map[string]int) Availability {
	scenario := ClassifyAxes(variants)
	variant, complete := Resolve(variants, sel)

	out := Availability{
		Scenario: scenario,
		Variant:  variant,
		Complete: complete,
	}

	if variant == nil {
		return out
	}

	remaining := variant.Stock - inCart[variant.ID]
	if remaining < 0 {
		remaining = 0
	}
	out.MaxAddable = remaining
	out.Purchasable = variant.Active && remaining > 0

	return out
}

func axisValue(v *Variant, axis Axis) string {
	if axis == AxisSize {
		return v.Size
	}
	return v.Color
}

func otherAxis(axis Axis) Axis {
	if axis == AxisSize {
		return AxisColor
	}
	return AxisSize
}

func otherAxisValue(sel Selection, axis Axis) string {
	if axis == AxisSize {
		return sel.Color
	}
	return sel.Size
}
