// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for the form screens
const (
	// Content padding
	ContentPaddingH = 2
	ContentPaddingV = 1

	// Field rows
	LabelWidth    = 26
	InputWidth    = 40
	LineCodeWidth = 10
	LineDescWidth = 28
	LineQtyWidth  = 9

	// Observations text area
	TextAreaHeight = 5

	// Control areas
	HeaderHeight  = 1
	StepBarHeight = 2
	FooterHeight  = 2

	// Responsive breakpoints
	MinimumTerminalWidth = 80
	CompactModeWidth     = 100
	MaxContentWidth      = 110
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		IsCompact:      width < CompactModeWidth,
	}
}

// ContentWidth returns the usable content width, capped at MaxContentWidth.
// An unknown terminal size (0) yields MinimumTerminalWidth.
func (l LayoutConfig) ContentWidth() int {
	if l.TerminalWidth <= 0 {
		return MinimumTerminalWidth - ContentPaddingH*2
	}
	w := l.TerminalWidth - ContentPaddingH*2
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// BodyHeight returns the rows left for the step body.
func (l LayoutConfig) BodyHeight() int {
	h := l.TerminalHeight - HeaderHeight - StepBarHeight - FooterHeight - ContentPaddingV*2
	if h < 1 {
		return 1
	}
	return h
}

// InputFieldWidth returns the width of a single-line input next to a label.
func (l LayoutConfig) InputFieldWidth() int {
	w := l.ContentWidth() - LabelWidth - 2
	if w > InputWidth {
		w = InputWidth
	}
	if w < 10 {
		w = 10
	}
	return w
}

// TextAreaWidth returns the width of the observations text area.
func (l LayoutConfig) TextAreaWidth() int {
	return l.ContentWidth() - 2
}
