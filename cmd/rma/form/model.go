// Package form implements the interactive four-step RMA intake form on
// bubbletea. The Model is a thin view over an intake.Controller: every edit
// goes through the controller and the screen is re-rendered from its form.
package form

import (
	"context"
	"fmt"
	"time"

	"rmaintake/cmd/rma/ui"
	"rmaintake/internal/claim"
	"rmaintake/internal/intake"
	"rmaintake/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// analysisDoneMsg carries the result of the classification command.
type analysisDoneMsg struct {
	suggestion *claim.Suggestion
}

// Options configures a Model.
type Options struct {
	Classifier intake.Classifier
	Styles     ui.Styles
	Audit      *logging.AuditLogger
	Clock      func() time.Time
}

// Model is the bubbletea model of the intake form.
type Model struct {
	ctrl       *intake.Controller
	classifier intake.Classifier
	audit      *logging.AuditLogger

	// UI Components
	editor   textinput.Model
	textarea textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   ui.Styles
	renderer *glamour.TermRenderer
	layout   ui.LayoutConfig

	// State
	focus   int
	status  string
	ack     *intake.Acknowledgment
	ackView string
	started time.Time
	done    bool
}

// New builds the form model with a fresh controller.
func New(opts Options) Model {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	audit := opts.Audit
	if audit == nil {
		audit = logging.NewAuditLogger("")
	}

	ctrl := intake.New(intake.WithClock(clock), intake.WithAudit(audit))

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = 200

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(ui.TextAreaHeight)
	ta.Placeholder = placeholder(item{field: claim.FieldObservations})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	m := Model{
		ctrl:       ctrl,
		classifier: opts.Classifier,
		audit:      audit,
		editor:     editor,
		textarea:   ta,
		spinner:    sp,
		help:       help.New(),
		keys:       defaultKeyMap(),
		styles:     opts.Styles,
		started:    clock(),
	}
	m.resize(0, 0)
	m.loadFocus()
	logging.Session("form session started")
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Controller exposes the underlying controller, for callers that need the
// final form after the program exits.
func (m Model) Controller() *intake.Controller { return m.ctrl }

// Acknowledgment returns the submitted claim, if the user submitted.
func (m Model) Acknowledgment() (intake.Acknowledgment, bool) {
	if m.ack == nil {
		return intake.Acknowledgment{}, false
	}
	return *m.ack, true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.ack != nil {
			m.ackView = m.renderAck(*m.ack)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Analyzing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		m.ctrl.ApplySuggestion(msg.suggestion)
		if msg.suggestion == nil {
			m.status = "Sin sugerencia disponible."
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.ack != nil {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc, tea.KeyCtrlC, tea.KeySpace:
				m.finish()
				return m, tea.Quit
			}
			if msg.String() == "q" {
				m.finish()
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextStep):
		m.ctrl.GoNext()
		return m, m.resetFocus()

	case key.Matches(msg, m.keys.PrevStep):
		m.ctrl.GoPrevious()
		return m, m.resetFocus()

	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(-1)

	case key.Matches(msg, m.keys.AddLine):
		if m.ctrl.Step() != intake.StepProducts {
			return m, nil
		}
		id := m.ctrl.AddProductLine()
		return m, m.focusLine(id)

	case key.Matches(msg, m.keys.RemoveLine):
		if m.ctrl.Step() != intake.StepProducts {
			return m, nil
		}
		return m, m.removeLine()

	case key.Matches(msg, m.keys.Analyze):
		if m.ctrl.Step() != intake.StepTypification {
			return m, nil
		}
		return m, m.startAnalysis()

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}

	it, ok := m.focused()
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	switch it.kind {
	case kindText:
		m.editor, cmd = m.editor.Update(msg)
		if applyText(m.ctrl, it, m.editor.Value()) {
			m.status = ""
		} else {
			m.status = fmt.Sprintf("Valor no válido para %s", it.label)
		}

	case kindTextArea:
		m.textarea, cmd = m.textarea.Update(msg)
		applyText(m.ctrl, it, m.textarea.Value())

	case kindRadio:
		switch {
		case key.Matches(msg, m.keys.Left):
			cycleRadio(m.ctrl, it, -1)
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Toggle):
			cycleRadio(m.ctrl, it, 1)
		}

	case kindCheck:
		if key.Matches(msg, m.keys.Toggle) {
			toggleCheck(m.ctrl, it)
		}

	case kindButton:
		if key.Matches(msg, m.keys.Toggle) {
			switch it.action {
			case actionAnalyze:
				cmd = m.startAnalysis()
			case actionSubmit:
				cmd = m.submit()
			}
		}
	}
	return m, cmd
}

// items lists the focusable items of the current step.
func (m *Model) items() []item {
	return itemsFor(m.ctrl.Step(), m.ctrl.Form())
}

func (m *Model) focused() (item, bool) {
	items := m.items()
	if m.focus < 0 || m.focus >= len(items) {
		return item{}, false
	}
	return items[m.focus], true
}

// loadFocus clamps the focus index and loads the focused value into the
// matching editor.
func (m *Model) loadFocus() tea.Cmd {
	items := m.items()
	if m.focus >= len(items) {
		m.focus = len(items) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}

	m.editor.Blur()
	m.textarea.Blur()

	it, ok := m.focused()
	if !ok {
		return nil
	}
	switch it.kind {
	case kindText:
		m.editor.SetValue(textValue(it, m.ctrl.Form()))
		m.editor.Placeholder = placeholder(it)
		m.editor.CursorEnd()
		return m.editor.Focus()
	case kindTextArea:
		if m.textarea.Value() != m.ctrl.Form().Observations {
			m.textarea.SetValue(m.ctrl.Form().Observations)
		}
		return m.textarea.Focus()
	}
	return nil
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	n := len(m.items())
	if n == 0 {
		return nil
	}
	m.focus = ((m.focus+delta)%n + n) % n
	return m.loadFocus()
}

func (m *Model) resetFocus() tea.Cmd {
	m.focus = 0
	m.status = ""
	m.keys.step = m.ctrl.Step()
	return m.loadFocus()
}

// focusLine moves focus to the first cell of line id.
func (m *Model) focusLine(id string) tea.Cmd {
	for i, it := range m.items() {
		if it.lineID == id {
			m.focus = i
			break
		}
	}
	return m.loadFocus()
}

// removeLine removes the focused line, or the last one when focus is not on
// a line.
func (m *Model) removeLine() tea.Cmd {
	f := m.ctrl.Form()
	id := f.Products[len(f.Products)-1].ID
	if it, ok := m.focused(); ok && it.isLine() {
		id = it.lineID
	}
	if !m.ctrl.RemoveProductLine(id) {
		m.status = "Debe quedar al menos una línea de producto."
		return nil
	}
	m.status = ""
	return m.loadFocus()
}

func (m *Model) startAnalysis() tea.Cmd {
	run, ok := m.ctrl.Analyze(m.classifier)
	if !ok {
		if !m.ctrl.Analyzing() {
			m.status = fmt.Sprintf("Escriba al menos %d caracteres en observaciones para analizar.", intake.MinObservationLength)
		}
		return nil
	}
	m.status = ""
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return analysisDoneMsg{suggestion: run(context.Background())}
	})
}

func (m *Model) submit() tea.Cmd {
	ack, ok := m.ctrl.Submit()
	if !ok {
		m.status = "La solicitud se envía desde el paso Evidencia y Solución."
		return nil
	}
	m.ack = &ack
	m.ackView = m.renderAck(ack)
	m.editor.Blur()
	m.textarea.Blur()
	m.status = ""
	return nil
}

// finish records the end of the session once.
func (m *Model) finish() {
	if m.done {
		return
	}
	m.done = true
	m.editor.Blur()
	m.textarea.Blur()
	m.audit.SessionEnd(m.ack != nil, time.Since(m.started))
	logging.Session("form session ended (submitted=%v)", m.ack != nil)
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayoutConfig(width, height)
	m.editor.Width = m.layout.InputFieldWidth()
	m.textarea.SetWidth(m.layout.TextAreaWidth())
	m.help.Width = m.layout.ContentWidth()
	m.renderer = newRenderer(m.styles.Theme.IsDark, m.layout.ContentWidth())
}

func newRenderer(dark bool, width int) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.SessionError("glamour renderer: %v", err)
		return nil
	}
	return r
}
