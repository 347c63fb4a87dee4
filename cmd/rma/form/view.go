package form

import (
	"fmt"
	"strings"

	"rmaintake/cmd/rma/ui"
	"rmaintake/internal/claim"
	"rmaintake/internal/intake"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.ack != nil {
		return m.ackView + "\n" + m.styles.Footer.Render("enter/esc para salir")
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Solicitud de Devolución (RMA)"))
	sb.WriteString("\n")
	sb.WriteString(m.stepBar())
	sb.WriteString("\n\n")

	var body string
	switch m.ctrl.Step() {
	case intake.StepGeneral:
		body = m.viewGeneral()
	case intake.StepProducts:
		body = m.viewProducts()
	case intake.StepTypification:
		body = m.viewTypification()
	case intake.StepEvidence:
		body = m.viewEvidence()
	}
	sb.WriteString(m.styles.Content.Render(body))
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(m.styles.Warning.Render(m.status))
		sb.WriteString("\n")
	}
	keys := m.keys
	keys.step = m.ctrl.Step()
	sb.WriteString(m.styles.Footer.Render(m.help.View(keys)))
	return sb.String()
}

func (m Model) stepBar() string {
	current := m.ctrl.Step()
	parts := make([]string, 0, intake.StepCount)
	for i := 0; i < intake.StepCount; i++ {
		s := intake.Step(i)
		label := fmt.Sprintf("%d. %s", i+1, s.Title())
		switch {
		case s == current:
			parts = append(parts, m.styles.StepActive.Render(label))
		case s < current:
			parts = append(parts, m.styles.StepDone.Render("✓ "+label))
		default:
			parts = append(parts, m.styles.StepPending.Render(label))
		}
	}
	return strings.Join(parts, m.styles.Muted.Render(" › "))
}

// row renders one labelled field. The label takes the focus style.
func (m Model) row(label, value string, focused bool) string {
	l := m.styles.Label.Render(label)
	if focused {
		l = m.styles.FocusedLabel.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, l, " ", value)
}

// fieldView renders the value part of an item.
func (m Model) fieldView(it item, idx int, f claim.Form) string {
	focused := idx == m.focus
	switch it.kind {
	case kindText:
		if focused {
			return m.editor.View()
		}
		v := textValue(it, f)
		if v == "" {
			return m.styles.Muted.Render(orPlaceholder(placeholder(it)))
		}
		return m.styles.Body.Render(v)

	case kindRadio:
		return m.radioView(it, f, focused)

	case kindCheck:
		box := "[ ]"
		if checked(it, f) {
			box = "[x]"
		}
		label := it.label
		if it.tag != "" {
			if p, ok := claim.LookupProblem(it.tag); ok && p.Critical {
				label = m.styles.Critical.Render("⚠ " + label)
			}
		}
		if focused {
			return m.styles.Cursor.Render("› "+box) + " " + label
		}
		return "  " + box + " " + label

	case kindButton:
		label := "[ " + it.label + " ]"
		if !m.buttonEnabled(it) {
			if focused {
				label = "› " + label
			}
			return m.styles.Muted.Render(label)
		}
		if focused {
			return m.styles.StepActive.Render(label)
		}
		return m.styles.Bold.Render(label)
	}
	return ""
}

// buttonEnabled reports whether pressing the button would do anything.
func (m Model) buttonEnabled(it item) bool {
	if it.action == actionAnalyze {
		return m.ctrl.CanAnalyze()
	}
	return true
}

func orPlaceholder(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func (m Model) radioView(it item, f claim.Form, focused bool) string {
	type opt struct {
		label string
		on    bool
	}
	var opts []opt

	if it.isLine() {
		if idx := f.LineIndex(it.lineID); idx >= 0 {
			u := f.Products[idx].Unit
			if focused {
				return m.styles.Cursor.Render("‹ " + string(u) + " ›")
			}
			return string(u)
		}
		return ""
	}

	switch it.field {
	case claim.FieldPriority:
		opts = []opt{
			{claim.PriorityNormal.Label(), f.Priority == claim.PriorityNormal},
			{claim.PriorityHigh.Label(), f.Priority == claim.PriorityHigh},
		}
	case claim.FieldIsCompleteAndOriginal:
		opts = []opt{{"Sí", f.IsCompleteAndOriginal == claim.Yes}, {"No", f.IsCompleteAndOriginal == claim.No}}
	case claim.FieldSampleCollected:
		opts = []opt{{"Sí", f.SampleCollected == claim.Yes}, {"No", f.SampleCollected == claim.No}}
	case claim.FieldExpectedSolution:
		for _, o := range claim.SolutionCatalog {
			opts = append(opts, opt{o.Label, f.ExpectedSolution == o.Solution})
		}
	}

	parts := make([]string, len(opts))
	for i, o := range opts {
		mark := "( )"
		style := m.styles.Body
		if o.on {
			mark = "(•)"
			style = m.styles.Selected
		}
		parts[i] = style.Render(mark + " " + o.label)
	}
	sep := "  "
	if it.field == claim.FieldExpectedSolution {
		sep = "\n"
	}
	out := strings.Join(parts, sep)
	if focused {
		out = m.styles.Cursor.Render("›") + " " + out
	}
	return out
}

func (m Model) viewGeneral() string {
	f := m.ctrl.Form()
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Datos Generales"))
	sb.WriteString("\n")
	for i, it := range itemsFor(intake.StepGeneral, f) {
		sb.WriteString(m.row(it.label, m.fieldView(it, i, f), i == m.focus))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewProducts() string {
	f := m.ctrl.Form()
	items := itemsFor(intake.StepProducts, f)

	table := ui.NewSimpleTable("Productos", []string{"#", "Código", "Descripción", "Cant. Fact", "Cant. Recl", "Unidad"})
	for li, p := range f.Products {
		row := []string{fmt.Sprintf("%d", li+1)}
		for i, it := range items {
			if it.lineID != p.ID {
				continue
			}
			cell := m.fieldView(it, i, f)
			if i == m.focus {
				table.Highlight = li
				table.HighlightCol = len(row)
			}
			row = append(row, cell)
		}
		table.AddRow(row...)
	}

	var sb strings.Builder
	sb.WriteString(table.View(m.styles))
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d línea(s) · ctrl+a agregar · ctrl+d eliminar", len(f.Products))))
	sb.WriteString("\n\n")

	for i, it := range items {
		if it.isLine() {
			continue
		}
		sb.WriteString(m.row(it.label, m.fieldView(it, i, f), i == m.focus))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) viewTypification() string {
	f := m.ctrl.Form()
	items := itemsFor(intake.StepTypification, f)
	byTag := make(map[claim.ProblemTag]int, len(items))
	for i, it := range items {
		if it.tag != "" {
			byTag[it.tag] = i
		}
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Tipificación del Problema"))
	sb.WriteString("\n")
	for _, g := range claim.ProblemCatalog {
		sb.WriteString(m.styles.Bold.Render(g.Title))
		sb.WriteString("\n")
		for _, p := range g.Problems {
			i := byTag[p.Tag]
			sb.WriteString(m.fieldView(items[i], i, f))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	for i, it := range items {
		switch it.kind {
		case kindTextArea:
			sb.WriteString(m.row(it.label, "", i == m.focus))
			sb.WriteString("\n")
			sb.WriteString(m.textarea.View())
			sb.WriteString("\n")
		case kindButton:
			sb.WriteString(m.fieldView(it, i, f))
			sb.WriteString("\n")
		}
	}
	sb.WriteString(m.suggestionView())
	return sb.String()
}

func (m Model) suggestionView() string {
	if m.ctrl.Analyzing() {
		return m.spinner.View() + " " + m.styles.Info.Render("Analizando observaciones...") + "\n"
	}
	s := m.ctrl.Suggestion()
	if s == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.styles.Badge.Render("Sugerencia IA"))
	sb.WriteString(" ")
	sb.WriteString(m.styles.Bold.Render(s.Category.Label()))
	if s.Reasoning != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(s.Reasoning))
	}
	return m.styles.Suggestion.Render(sb.String()) + "\n"
}

func (m Model) viewEvidence() string {
	f := m.ctrl.Form()
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Evidencia y Solución"))
	sb.WriteString("\n")
	for i, it := range itemsFor(intake.StepEvidence, f) {
		switch it.kind {
		case kindCheck, kindButton:
			sb.WriteString(m.fieldView(it, i, f))
		case kindTextArea:
			sb.WriteString(m.row(it.label, "", i == m.focus))
			sb.WriteString("\n")
			sb.WriteString(m.textarea.View())
		default:
			sb.WriteString(m.row(it.label, m.fieldView(it, i, f), i == m.focus))
		}
		sb.WriteString("\n")
	}
	if i := solutionIndex(f.ExpectedSolution); i >= 0 {
		sb.WriteString(m.styles.Subtitle.Render(claim.SolutionCatalog[i].Description))
		sb.WriteString("\n")
	}
	return sb.String()
}

func solutionIndex(s claim.Solution) int {
	for i, o := range claim.SolutionCatalog {
		if o.Solution == s {
			return i
		}
	}
	return -1
}

// renderAck renders the acknowledgment screen through glamour, falling back
// to raw markdown.
func (m Model) renderAck(ack intake.Acknowledgment) string {
	md := fmt.Sprintf("> **Formulario enviado correctamente (Simulación)**\n\n**Referencia:** `%s`  \n**Enviado:** %s\n\n%s",
		ack.Reference, ack.SubmittedAt.Format("2006-01-02 15:04"), claim.Summary(ack.Form))
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
