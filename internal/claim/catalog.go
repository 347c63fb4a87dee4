package claim

// ProblemTag identifies one checkbox of the typification step.
type ProblemTag string

// Problem is a catalog entry for a ProblemTag.
type Problem struct {
	Tag      ProblemTag
	Label    string
	Category Category
	Critical bool
}

// ProblemGroup is one section of the typification step.
type ProblemGroup struct {
	Category Category
	Title    string
	Problems []Problem
}

// ProblemCatalog lists the typification checkboxes grouped by root cause.
var ProblemCatalog = []ProblemGroup{
	{
		Category: CategoryDispatch,
		Title:    "A. Error de Despacho / Bodega",
		Problems: []Problem{
			{Tag: "cruzado", Label: "Producto Cruzado (Ítem diferente al facturado)"},
			{Tag: "faltante", Label: "Faltante (Menos bultos de los facturados)"},
			{Tag: "sobrante", Label: "Sobrante (Mercadería de más no facturada)"},
		},
	},
	{
		Category: CategoryQuality,
		Title:    "B. Calidad (Defecto Fábrica)",
		Problems: []Problem{
			{Tag: "medidas", Label: "Medidas Incorrectas (No corresponde a ficha)"},
			{Tag: "sellado", Label: "Falla de Sellado (Se abren fondo/costados)"},
			{Tag: "apariencia", Label: "Apariencia (Color, impresión, grumos)"},
			{Tag: "inocuidad", Label: "Olor/Contaminación (CRÍTICO)", Critical: true},
		},
	},
	{
		Category: CategoryTransport,
		Title:    "C. Transporte / Entrega",
		Problems: []Problem{
			{Tag: "fisico", Label: "Daño Físico (Cajas aplastadas/mojadas)"},
			{Tag: "incompleto", Label: "Pedido Incompleto Ruta (Chofer no entregó todo)"},
		},
	},
	{
		Category: CategoryCommercial,
		Title:    "D. Error Comercial",
		Problems: []Problem{
			{Tag: "captura", Label: "Error de captura (Vendedor pidió código equivocado)"},
		},
	},
}

var (
	problemIndex = map[ProblemTag]Problem{}
	problemOrder = map[ProblemTag]int{}
)

func init() {
	n := 0
	for gi := range ProblemCatalog {
		g := &ProblemCatalog[gi]
		for pi := range g.Problems {
			g.Problems[pi].Category = g.Category
			p := g.Problems[pi]
			problemIndex[p.Tag] = p
			problemOrder[p.Tag] = n
			n++
		}
	}
}

// AllProblems returns every catalog entry in display order.
func AllProblems() []Problem {
	out := make([]Problem, 0, len(problemIndex))
	for _, g := range ProblemCatalog {
		out = append(out, g.Problems...)
	}
	return out
}

// LookupProblem returns the catalog entry for tag.
func LookupProblem(tag ProblemTag) (Problem, bool) {
	p, ok := problemIndex[tag]
	return p, ok
}

func problemRank(tag ProblemTag) int {
	if r, ok := problemOrder[tag]; ok {
		return r
	}
	return len(problemOrder)
}

// Solution is the resolution negotiated with the client. The zero value
// means none was chosen.
type Solution string

const (
	SolutionNone        Solution = ""
	SolutionHandToHand  Solution = "mano_a_mano"
	SolutionReplacement Solution = "reposicion"
	SolutionCreditNote  Solution = "nota_credito"
	SolutionDiscount    Solution = "descuento"
)

// SolutionOption is a catalog entry for a Solution.
type SolutionOption struct {
	Solution    Solution
	Label       string
	Description string
}

// SolutionCatalog lists the selectable solutions in display order.
var SolutionCatalog = []SolutionOption{
	{SolutionHandToHand, "Cambio Mano a Mano", "Recoger malo y entregar bueno simultáneamente."},
	{SolutionReplacement, "Reposición Posterior", "Recoger, revisar en bodega y enviar después."},
	{SolutionCreditNote, "Nota de Crédito", "Cliente quiere descuento en su saldo."},
	{SolutionDiscount, "Descuento Comercial", "Se queda producto con descuento (Defectos estéticos)."},
}

// Label returns the display label, or an empty string for SolutionNone.
func (s Solution) Label() string {
	for _, o := range SolutionCatalog {
		if o.Solution == s {
			return o.Label
		}
	}
	return string(s)
}
