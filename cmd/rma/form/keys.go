package form

import (
	"rmaintake/internal/intake"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the form bindings. It implements help.KeyMap.
type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Toggle     key.Binding
	Left       key.Binding
	Right      key.Binding
	NextStep   key.Binding
	PrevStep   key.Binding
	AddLine    key.Binding
	RemoveLine key.Binding
	Analyze    key.Binding
	Submit     key.Binding
	Quit       key.Binding

	step intake.Step // selects the step-specific bindings in ShortHelp
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "siguiente campo")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "campo anterior")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("espacio", "marcar")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "opción anterior")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "opción siguiente")),
		NextStep:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "siguiente paso")),
		PrevStep:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "paso anterior")),
		AddLine:    key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "agregar línea")),
		RemoveLine: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "eliminar línea")),
		Analyze:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "analizar con IA")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "enviar")),
		Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "salir")),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	out := []key.Binding{k.Next, k.Toggle}
	switch k.step {
	case intake.StepProducts:
		out = append(out, k.AddLine, k.RemoveLine)
	case intake.StepTypification:
		out = append(out, k.Analyze)
	case intake.StepEvidence:
		out = append(out, k.Submit)
	}
	return append(out, k.NextStep, k.PrevStep, k.Quit)
}

// FullHelp groups every binding.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Toggle, k.Left, k.Right},
		{k.NextStep, k.PrevStep, k.AddLine, k.RemoveLine},
		{k.Analyze, k.Submit, k.Quit},
	}
}
