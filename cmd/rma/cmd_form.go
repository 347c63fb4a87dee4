package main

import (
	"context"
	"fmt"

	"rmaintake/cmd/rma/form"
	"rmaintake/cmd/rma/ui"
	"rmaintake/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runForm starts the interactive intake form
func runForm(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session := newSession()
	cl, err := newAssistant(context.Background(), cfg, session)
	if err != nil {
		return err
	}
	if !cl.Enabled() {
		logging.Boot("no API key configured; AI suggestions disabled")
	}

	m := form.New(form.Options{
		Classifier: cl,
		Styles:     ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)),
		Audit:      session,
	})

	opts := []tea.ProgramOption{}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, opts...)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}

	if fm, ok := final.(form.Model); ok {
		if ack, ok := fm.Acknowledgment(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Formulario enviado correctamente (Simulación). Referencia: %s\n", ack.Reference)
		}
	}
	return nil
}
