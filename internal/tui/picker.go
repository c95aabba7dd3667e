package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

// Picker asks the user through a terminal screen. Each pick runs its own
// bubbletea program, so the nested picks for a generic type's parameters show
// up as one screen after another.
type Picker struct {
	options []tea.ProgramOption
}

// NewPicker returns a picker. Options are passed to every program run, which
// lets callers redirect input and output.
func NewPicker(opts ...tea.ProgramOption) *Picker {
	return &Picker{options: opts}
}

// Pick implements resolver.Picker.
func (p *Picker) Pick(ctx context.Context, req resolver.Request) (catalog.Type, bool, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Type{}, false, err
	}
	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, p.options...)
	final, err := tea.NewProgram(newPickerModel(req), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return catalog.Type{}, false, ctxErr
		}
		return catalog.Type{}, false, fmt.Errorf("tui: run picker: %w", err)
	}
	m, ok := final.(*pickerModel)
	if !ok {
		return catalog.Type{}, false, fmt.Errorf("tui: unexpected model %T", final)
	}
	return m.chosen, m.ok, nil
}
