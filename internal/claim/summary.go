package claim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Summary renders the form as a markdown document for the acknowledgment
// screen. Conditional fields are omitted when they carry no meaning.
func Summary(f Form) string {
	var sb strings.Builder

	sb.WriteString("# Solicitud RMA\n\n")
	sb.WriteString("## Datos Generales\n\n")
	sb.WriteString(fmt.Sprintf("- **Fecha de solicitud:** %s\n", orDash(FormatDate(f.RequestDate))))
	sb.WriteString(fmt.Sprintf("- **Vendedor:** %s\n", orDash(f.SalesPerson)))
	sb.WriteString(fmt.Sprintf("- **Prioridad:** %s\n", f.Priority.Label()))
	sb.WriteString(fmt.Sprintf("- **Cliente:** %s\n", orDash(f.ClientName)))
	sb.WriteString(fmt.Sprintf("- **Factura / Remisión:** %s\n", orDash(f.InvoiceNumber)))
	sb.WriteString(fmt.Sprintf("- **Fecha de entrega:** %s\n\n", orDash(FormatDate(f.DeliveryDate))))

	sb.WriteString("## Productos\n\n")
	sb.WriteString("| Código | Descripción | Cant. Fact | Cant. Recl | Unidad |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, p := range f.Products {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			orDash(p.Code), orDash(p.Description), FormatQty(p.QtyInvoiced), FormatQty(p.QtyClaimed), p.Unit))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Completo y en empaque original:** %s\n\n", f.IsCompleteAndOriginal))
	if f.IsCompleteAndOriginal == No {
		sb.WriteString(fmt.Sprintf("> %s\n\n", orDash(f.StatusExplanation)))
	}

	sb.WriteString("## Tipificación\n\n")
	problems := f.Problems()
	if len(problems) == 0 {
		sb.WriteString("_Sin problemas seleccionados._\n\n")
	}
	for _, tag := range problems {
		label := string(tag)
		if p, ok := LookupProblem(tag); ok {
			label = p.Label
		}
		sb.WriteString(fmt.Sprintf("- %s\n", label))
	}
	if len(problems) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("## Evidencia y Solución\n\n")
	sb.WriteString(fmt.Sprintf("- [%s] Foto del producto\n", check(f.HasPhotoProduct)))
	sb.WriteString(fmt.Sprintf("- [%s] Foto etiqueta caja/bulto\n", check(f.HasPhotoLabel)))
	sb.WriteString(fmt.Sprintf("- [%s] Muestra física", check(f.HasPhysicalSample)))
	if f.HasPhysicalSample {
		sb.WriteString(fmt.Sprintf(" (recogida: %s)", f.SampleCollected))
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("**Solución esperada:** %s\n\n", orDash(f.ExpectedSolution.Label())))

	if strings.TrimSpace(f.Observations) != "" {
		sb.WriteString("## Observaciones\n\n")
		sb.WriteString(f.Observations)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatDate renders a date with DateLayout, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatQty renders a quantity without trailing zeros; zero renders empty,
// matching the blank numeric inputs of a new line.
func FormatQty(q float64) string {
	if q == 0 {
		return ""
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

func check(b bool) string {
	if b {
		return "x"
	}
	return " "
}

// ParseDate parses DateLayout. An empty string yields the zero time; ok is
// false only for non-empty unparseable input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseQty parses a quantity typed by the user. Empty input is zero; NaN and
// infinities are rejected.
func ParseQty(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, true
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}
