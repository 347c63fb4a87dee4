package claim

import "strings"

// Priority of the claim.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh            // food-safety risk or key account
)

// Label returns the display name for the priority.
func (p Priority) Label() string {
	if p == PriorityHigh {
		return "Alta (Riesgo de Inocuidad/Cliente Clave)"
	}
	return "Normal"
}

func (p Priority) String() string {
	if p == PriorityHigh {
		return "HIGH"
	}
	return "NORMAL"
}

// Unit of measure for a product line.
type Unit string

const (
	UnitMillar Unit = "Millar"
	UnitBulto  Unit = "Bulto"
	UnitKg     Unit = "Kg"
	UnitUnidad Unit = "Unidad"
)

// Units lists the selectable units in display order.
var Units = []Unit{UnitMillar, UnitBulto, UnitKg, UnitUnidad}

// Cycle returns the unit delta positions away in Units, wrapping around.
func (u Unit) Cycle(delta int) Unit {
	idx := 0
	for i, v := range Units {
		if v == u {
			idx = i
			break
		}
	}
	n := len(Units)
	return Units[((idx+delta)%n+n)%n]
}

// TriState is an optional boolean: not answered, yes or no.
type TriState int

const (
	Unknown TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "SÍ"
	case No:
		return "NO"
	}
	return "—"
}

// Category is the root-cause family of a claim.
type Category string

const (
	CategoryDispatch    Category = "DISPATCH"
	CategoryQuality     Category = "QUALITY"
	CategoryTransport   Category = "TRANSPORT"
	CategoryCommercial  Category = "COMMERCIAL"
	CategoryUnspecified Category = "UNSPECIFIED"
)

// Categories lists every category in taxonomy order.
var Categories = []Category{
	CategoryDispatch,
	CategoryQuality,
	CategoryTransport,
	CategoryCommercial,
	CategoryUnspecified,
}

var categoryLabels = map[Category]string{
	CategoryDispatch:    "ERROR DE DESPACHO / BODEGA",
	CategoryQuality:     "CALIDAD DEL PRODUCTO (Defecto de Fábrica)",
	CategoryTransport:   "TRANSPORTE / ENTREGA",
	CategoryCommercial:  "ERROR COMERCIAL (Ventas)",
	CategoryUnspecified: "POR DEFINIR",
}

// Label returns the display label, which is also the value the classifier
// is constrained to answer with.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// CategoryLabels returns the labels of Categories, in order.
func CategoryLabels() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Label()
	}
	return out
}

// ParseCategory accepts either a code ("QUALITY") or a display label and
// reports whether it matched a known category.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}
	return "", false
}

// Suggestion is the classifier's best guess for a claim. It is display-only
// and never merged into the Form.
type Suggestion struct {
	Category  Category
	Reasoning string
}
